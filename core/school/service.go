package school

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

// Collection names subject to the cascade delete, in deletion order.
// The order carries no referential-integrity meaning (the store enforces
// none); it is fixed so the sequence is observable and testable.
var CascadeOrder = []string{"classes", "students", "teachers", "subjects", "notices", "complaints"}

type (
	Repository interface {
		CreateClass(ctx context.Context, cls Class) (Class, error)
		QueryClasses(ctx context.Context, school string) ([]Class, error)
		CreateStudent(ctx context.Context, std Student) (Student, error)
		QueryStudents(ctx context.Context, school string) ([]Student, error)
		CreateTeacher(ctx context.Context, tch Teacher) (Teacher, error)
		QueryTeachers(ctx context.Context, school string) ([]Teacher, error)
		CreateSubject(ctx context.Context, sub Subject) (Subject, error)
		QuerySubjects(ctx context.Context, school string) ([]Subject, error)
		CreateNotice(ctx context.Context, ntc Notice) (Notice, error)
		QueryNotices(ctx context.Context, school string) ([]Notice, error)
		CreateComplaint(ctx context.Context, cpl Complaint) (Complaint, error)
		QueryComplaints(ctx context.Context, school string) ([]Complaint, error)

		// CountByAdmin counts students, teachers, classes and subjects
		// referencing the given Admin ID.
		CountByAdmin(ctx context.Context, school string) (Counts, error)
		// DeleteByAdmin bulk-deletes all records referencing the given Admin ID,
		// one collection at a time following CascadeOrder. It stops at the first
		// failure; already deleted collections stay deleted.
		DeleteByAdmin(ctx context.Context, school string) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) CreateClass(ctx context.Context, school string, nc NewClass) (Class, error) {
	return svc.repo.CreateClass(ctx, Class{
		Name:      nc.Name,
		School:    school,
		CreatedAt: time.Now().UTC(),
	})
}

func (svc *Service) QueryClasses(ctx context.Context, school string) ([]Class, error) {
	return svc.repo.QueryClasses(ctx, school)
}

func (svc *Service) CreateStudent(ctx context.Context, school string, ns NewStudent) (Student, error) {
	return svc.repo.CreateStudent(ctx, Student{
		Name:      ns.Name,
		RollNum:   ns.RollNum,
		ClassID:   ns.ClassID,
		School:    school,
		CreatedAt: time.Now().UTC(),
	})
}

func (svc *Service) QueryStudents(ctx context.Context, school string) ([]Student, error) {
	return svc.repo.QueryStudents(ctx, school)
}

func (svc *Service) CreateTeacher(ctx context.Context, school string, nt NewTeacher) (Teacher, error) {
	return svc.repo.CreateTeacher(ctx, Teacher{
		Name:      nt.Name,
		Email:     nt.Email,
		ClassID:   nt.ClassID,
		School:    school,
		CreatedAt: time.Now().UTC(),
	})
}

func (svc *Service) QueryTeachers(ctx context.Context, school string) ([]Teacher, error) {
	return svc.repo.QueryTeachers(ctx, school)
}

func (svc *Service) CreateSubject(ctx context.Context, school string, ns NewSubject) (Subject, error) {
	return svc.repo.CreateSubject(ctx, Subject{
		Name:      ns.Name,
		Code:      ns.Code,
		Sessions:  ns.Sessions,
		ClassID:   ns.ClassID,
		School:    school,
		CreatedAt: time.Now().UTC(),
	})
}

func (svc *Service) QuerySubjects(ctx context.Context, school string) ([]Subject, error) {
	return svc.repo.QuerySubjects(ctx, school)
}

func (svc *Service) CreateNotice(ctx context.Context, school string, nn NewNotice) (Notice, error) {
	now := time.Now().UTC()
	return svc.repo.CreateNotice(ctx, Notice{
		Title:     nn.Title,
		Details:   nn.Details,
		Date:      now,
		School:    school,
		CreatedAt: now,
	})
}

func (svc *Service) QueryNotices(ctx context.Context, school string) ([]Notice, error) {
	return svc.repo.QueryNotices(ctx, school)
}

func (svc *Service) CreateComplaint(ctx context.Context, school string, nc NewComplaint) (Complaint, error) {
	now := time.Now().UTC()
	return svc.repo.CreateComplaint(ctx, Complaint{
		User:      nc.User,
		Complaint: nc.Complaint,
		Date:      now,
		School:    school,
		CreatedAt: now,
	})
}

func (svc *Service) QueryComplaints(ctx context.Context, school string) ([]Complaint, error) {
	return svc.repo.QueryComplaints(ctx, school)
}

func (svc *Service) Counts(ctx context.Context, school string) (Counts, error) {
	return svc.repo.CountByAdmin(ctx, school)
}

// DeleteAllForAdmin removes every record scoped to the given Admin ID.
// Not transactional: a mid-sequence failure leaves prior deletions applied.
// Re-running it removes whatever remains, so a failed cascade is retried by
// repeating the originating delete call.
func (svc *Service) DeleteAllForAdmin(ctx context.Context, school string) error {
	if err := svc.repo.DeleteByAdmin(ctx, school); err != nil {
		return errors.Wrap(err, "deleting school data")
	}
	return nil
}
