package models

import "time"

// Enrollment строка журнала записей. StudentName и CourseName снимаются
// в момент записи и не синхронизируются с последующими изменениями.
type Enrollment struct {
	ID          int64     `json:"id"`
	StudentID   int64     `json:"student_id"`
	StudentName string    `json:"student_name"`
	CourseID    int64     `json:"course_id"`
	CourseName  string    `json:"course_name"`
	Payment     int64     `json:"payment"`
	CreatedAt   time.Time `json:"created_at"`
}

// EnrollRequest запрос на запись в журнал.
type EnrollRequest struct {
	CourseID int64
	Payment  int64
}

// EnrollAck подтверждение записи. Enrolled=false означает мягкий отказ.
type EnrollAck struct {
	Message  string `json:"message"`
	Enrolled bool   `json:"enrolled"`
}

// EnrollmentLimits включает дополнительные проверки при вставке записи.
type EnrollmentLimits struct {
	UniquePerStudent bool
	EnforceCapacity  bool
}
