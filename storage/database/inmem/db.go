package inmemdb

import (
	"sync"

	"github.com/trezcool/shule/core/admin"
	"github.com/trezcool/shule/core/school"
)

// DB is an in-memory store used in tests and as a local fallback.
type DB struct {
	mutex sync.RWMutex

	admins map[string]*admin.Admin

	classes    map[string]*school.Class
	students   map[string]*school.Student
	teachers   map[string]*school.Teacher
	subjects   map[string]*school.Subject
	notices    map[string]*school.Notice
	complaints map[string]*school.Complaint
}

func NewDB() *DB {
	return &DB{
		admins:     make(map[string]*admin.Admin),
		classes:    make(map[string]*school.Class),
		students:   make(map[string]*school.Student),
		teachers:   make(map[string]*school.Teacher),
		subjects:   make(map[string]*school.Subject),
		notices:    make(map[string]*school.Notice),
		complaints: make(map[string]*school.Complaint),
	}
}

// Reset drops all stored records.
func (db *DB) Reset() {
	db.mutex.Lock()
	defer db.mutex.Unlock()
	db.admins = make(map[string]*admin.Admin)
	db.classes = make(map[string]*school.Class)
	db.students = make(map[string]*school.Student)
	db.teachers = make(map[string]*school.Teacher)
	db.subjects = make(map[string]*school.Subject)
	db.notices = make(map[string]*school.Notice)
	db.complaints = make(map[string]*school.Complaint)
}
