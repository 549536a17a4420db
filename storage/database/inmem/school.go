package inmemdb

import (
	"context"

	"github.com/google/uuid"

	"github.com/trezcool/shule/core/school"
)

type SchoolRepository struct {
	db *DB

	// DeletedCollections records the collections wiped by DeleteByAdmin in
	// call order so tests can assert the cascade sequence.
	DeletedCollections []string

	// FailOn, when set, makes DeleteByAdmin fail upon reaching the named
	// collection; used to exercise the partial-failure path.
	FailOn  string
	FailErr error
}

var _ school.Repository = (*SchoolRepository)(nil)

func NewSchoolRepository(db *DB) *SchoolRepository {
	return &SchoolRepository{db: db}
}

func (repo *SchoolRepository) CreateClass(_ context.Context, cls school.Class) (school.Class, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	cls.ID = uuid.New().String()
	repo.db.classes[cls.ID] = &cls
	return cls, nil
}

func (repo *SchoolRepository) QueryClasses(_ context.Context, schoolID string) ([]school.Class, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	res := make([]school.Class, 0)
	for _, cls := range repo.db.classes {
		if cls.School == schoolID {
			res = append(res, *cls)
		}
	}
	return res, nil
}

func (repo *SchoolRepository) CreateStudent(_ context.Context, std school.Student) (school.Student, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	std.ID = uuid.New().String()
	repo.db.students[std.ID] = &std
	return std, nil
}

func (repo *SchoolRepository) QueryStudents(_ context.Context, schoolID string) ([]school.Student, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	res := make([]school.Student, 0)
	for _, std := range repo.db.students {
		if std.School == schoolID {
			res = append(res, *std)
		}
	}
	return res, nil
}

func (repo *SchoolRepository) CreateTeacher(_ context.Context, tch school.Teacher) (school.Teacher, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	tch.ID = uuid.New().String()
	repo.db.teachers[tch.ID] = &tch
	return tch, nil
}

func (repo *SchoolRepository) QueryTeachers(_ context.Context, schoolID string) ([]school.Teacher, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	res := make([]school.Teacher, 0)
	for _, tch := range repo.db.teachers {
		if tch.School == schoolID {
			res = append(res, *tch)
		}
	}
	return res, nil
}

func (repo *SchoolRepository) CreateSubject(_ context.Context, sub school.Subject) (school.Subject, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	sub.ID = uuid.New().String()
	repo.db.subjects[sub.ID] = &sub
	return sub, nil
}

func (repo *SchoolRepository) QuerySubjects(_ context.Context, schoolID string) ([]school.Subject, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	res := make([]school.Subject, 0)
	for _, sub := range repo.db.subjects {
		if sub.School == schoolID {
			res = append(res, *sub)
		}
	}
	return res, nil
}

func (repo *SchoolRepository) CreateNotice(_ context.Context, ntc school.Notice) (school.Notice, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	ntc.ID = uuid.New().String()
	repo.db.notices[ntc.ID] = &ntc
	return ntc, nil
}

func (repo *SchoolRepository) QueryNotices(_ context.Context, schoolID string) ([]school.Notice, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	res := make([]school.Notice, 0)
	for _, ntc := range repo.db.notices {
		if ntc.School == schoolID {
			res = append(res, *ntc)
		}
	}
	return res, nil
}

func (repo *SchoolRepository) CreateComplaint(_ context.Context, cpl school.Complaint) (school.Complaint, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	cpl.ID = uuid.New().String()
	repo.db.complaints[cpl.ID] = &cpl
	return cpl, nil
}

func (repo *SchoolRepository) QueryComplaints(_ context.Context, schoolID string) ([]school.Complaint, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	res := make([]school.Complaint, 0)
	for _, cpl := range repo.db.complaints {
		if cpl.School == schoolID {
			res = append(res, *cpl)
		}
	}
	return res, nil
}

func (repo *SchoolRepository) CountByAdmin(_ context.Context, schoolID string) (school.Counts, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var counts school.Counts
	for _, std := range repo.db.students {
		if std.School == schoolID {
			counts.Students++
		}
	}
	for _, tch := range repo.db.teachers {
		if tch.School == schoolID {
			counts.Teachers++
		}
	}
	for _, cls := range repo.db.classes {
		if cls.School == schoolID {
			counts.Classes++
		}
	}
	for _, sub := range repo.db.subjects {
		if sub.School == schoolID {
			counts.Subjects++
		}
	}
	return counts, nil
}

func (repo *SchoolRepository) DeleteByAdmin(_ context.Context, schoolID string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, collection := range school.CascadeOrder {
		if repo.FailOn == collection {
			return repo.FailErr
		}
		switch collection {
		case "classes":
			for id, cls := range repo.db.classes {
				if cls.School == schoolID {
					delete(repo.db.classes, id)
				}
			}
		case "students":
			for id, std := range repo.db.students {
				if std.School == schoolID {
					delete(repo.db.students, id)
				}
			}
		case "teachers":
			for id, tch := range repo.db.teachers {
				if tch.School == schoolID {
					delete(repo.db.teachers, id)
				}
			}
		case "subjects":
			for id, sub := range repo.db.subjects {
				if sub.School == schoolID {
					delete(repo.db.subjects, id)
				}
			}
		case "notices":
			for id, ntc := range repo.db.notices {
				if ntc.School == schoolID {
					delete(repo.db.notices, id)
				}
			}
		case "complaints":
			for id, cpl := range repo.db.complaints {
				if cpl.School == schoolID {
					delete(repo.db.complaints, id)
				}
			}
		}
		repo.DeletedCollections = append(repo.DeletedCollections, collection)
	}
	return nil
}
