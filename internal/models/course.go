package models

import "time"

// Course представляет курс в каталоге платформы.
type Course struct {
	ID          int       `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	CreatedBy   string    `json:"created_by"` // UID администратора, создавшего курс
	CreatedAt   time.Time `json:"created_at"`
}

// Lecture представляет лекцию курса. Список лекций доступен
// только пользователям с активной подпиской.
type Lecture struct {
	ID          int    `json:"id"`
	CourseID    int    `json:"course_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Position    int    `json:"position"`
}

// DummyCourse используется для приёма данных из JSON-запроса
// при создании курса администратором.
type DummyCourse struct {
	Title       string `json:"title" validate:"required,min=5,max=100"`
	Description string `json:"description" validate:"required,min=8"`
	Category    string `json:"category" validate:"required"`
}
