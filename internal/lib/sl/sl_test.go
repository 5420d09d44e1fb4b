package sl_test

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/magabrotheeeer/course-enrollment/internal/lib/sl"
)

func TestErr(t *testing.T) {
	attr := sl.Err(errors.New("something went wrong"))
	assert.Equal(t, "error", attr.Key)
	assert.Equal(t, slog.StringValue("something went wrong"), attr.Value)
}

func TestErr_Nil(t *testing.T) {
	assert.Equal(t, "<nil>", sl.Err(nil).Value.String())
}
