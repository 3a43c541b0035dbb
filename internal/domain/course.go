package domain

import "time"

type Course struct {
	ID         int64     `json:"id" db:"id"`
	Code       string    `json:"code" db:"code"`
	Name       string    `json:"name" db:"name"`
	Department string    `json:"department" db:"department"`
	Credits    int       `json:"credits" db:"credits"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

type ExamKind string

const (
	ExamMidterm ExamKind = "midterm"
	ExamFinal   ExamKind = "final"
	ExamMakeup  ExamKind = "makeup"
	ExamQuiz    ExamKind = "quiz"
)

// Exam is one sitting of a course exam within a semester. Sample files hang
// off it, one per category.
type Exam struct {
	ID         int64     `json:"id" db:"id"`
	CourseID   int64     `json:"course_id" db:"course_id"`
	SemesterID int64     `json:"semester_id" db:"semester_id"`
	Kind       ExamKind  `json:"kind" db:"kind"`
	Year       int       `json:"year" db:"year"`
	Term       string    `json:"term" db:"term"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`

	// Populated via JOIN for display
	CourseCode string `json:"course_code,omitempty" db:"course_code"`
	CourseName string `json:"course_name,omitempty" db:"course_name"`
}

func ValidExamKind(k ExamKind) bool {
	switch k {
	case ExamMidterm, ExamFinal, ExamMakeup, ExamQuiz:
		return true
	}
	return false
}
