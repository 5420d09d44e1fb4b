package models

import "time"

const (
	// CourseAvailable курс открыт для записи.
	CourseAvailable = "available"
	// CourseFilledUp курс заполнен.
	CourseFilledUp = "filledup"
	// DefaultCoursePrice цена курса по умолчанию в долларах.
	DefaultCoursePrice = 99.0
)

// Course запись каталога курсов. Price хранится в основных единицах валюты.
type Course struct {
	ID                 int64     `json:"id"`
	Title              string    `json:"title"`
	Description        string    `json:"description"`
	Instructor         string    `json:"instructor"`
	EnrollmentDeadline string    `json:"enrollment_deadline"`
	StartingDate       string    `json:"starting_date"`
	Type               string    `json:"type"`
	Status             string    `json:"status"`
	Price              float64   `json:"price"`
	Capacity           *int      `json:"capacity,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
}

// CourseUpdate частичное обновление курса.
type CourseUpdate struct {
	Title              *string
	Description        *string
	Instructor         *string
	EnrollmentDeadline *string
	StartingDate       *string
	Type               *string
	Status             *string
	Price              *float64
	Capacity           *int
}
