package school_test

import (
	"context"
	"reflect"
	"testing"

	"github.com/pkg/errors"

	"github.com/trezcool/shule/core/school"
	inmemdb "github.com/trezcool/shule/storage/database/inmem"
)

func seedSchool(t *testing.T, svc *school.Service, schoolID string) {
	t.Helper()
	ctx := context.Background()

	cls, err := svc.CreateClass(ctx, schoolID, school.NewClass{Name: "Grade 1"})
	if err != nil {
		t.Fatalf("CreateClass() failed, %v", err)
	}
	if _, err = svc.CreateStudent(ctx, schoolID, school.NewStudent{Name: "Student A", RollNum: 1, ClassID: cls.ID}); err != nil {
		t.Fatalf("CreateStudent() failed, %v", err)
	}
	if _, err = svc.CreateTeacher(ctx, schoolID, school.NewTeacher{Name: "Teacher A", ClassID: cls.ID}); err != nil {
		t.Fatalf("CreateTeacher() failed, %v", err)
	}
	if _, err = svc.CreateSubject(ctx, schoolID, school.NewSubject{Name: "Maths", Code: "MTH101", ClassID: cls.ID}); err != nil {
		t.Fatalf("CreateSubject() failed, %v", err)
	}
	if _, err = svc.CreateNotice(ctx, schoolID, school.NewNotice{Title: "Opening day", Details: "School opens Monday"}); err != nil {
		t.Fatalf("CreateNotice() failed, %v", err)
	}
	if _, err = svc.CreateComplaint(ctx, schoolID, school.NewComplaint{User: "parent-1", Complaint: "Bus was late"}); err != nil {
		t.Fatalf("CreateComplaint() failed, %v", err)
	}
}

func TestServiceCounts(t *testing.T) {
	ctx := context.Background()
	repo := inmemdb.NewSchoolRepository(inmemdb.NewDB())
	svc := school.NewService(repo)

	seedSchool(t, svc, "school-1")
	seedSchool(t, svc, "school-2")
	seedSchool(t, svc, "school-2")

	counts, err := svc.Counts(ctx, "school-2")
	if err != nil {
		t.Fatalf("Counts() failed, %v", err)
	}
	expected := school.Counts{Students: 2, Teachers: 2, Classes: 2, Subjects: 2}
	if counts != expected {
		t.Errorf("Counts() = %+v; expected %+v", counts, expected)
	}
}

func TestServiceDeleteAllForAdmin(t *testing.T) {
	ctx := context.Background()
	repo := inmemdb.NewSchoolRepository(inmemdb.NewDB())
	svc := school.NewService(repo)

	seedSchool(t, svc, "school-1")
	seedSchool(t, svc, "school-2")

	if err := svc.DeleteAllForAdmin(ctx, "school-1"); err != nil {
		t.Fatalf("DeleteAllForAdmin() failed, %v", err)
	}

	// fixed deletion sequence
	if !reflect.DeepEqual(repo.DeletedCollections, school.CascadeOrder) {
		t.Errorf("deleted collections = %v; expected %v", repo.DeletedCollections, school.CascadeOrder)
	}

	counts, err := svc.Counts(ctx, "school-1")
	if err != nil {
		t.Fatalf("Counts() failed, %v", err)
	}
	if counts != (school.Counts{}) {
		t.Errorf("Counts() = %+v; expected all zero", counts)
	}

	// other schools' records untouched
	counts, err = svc.Counts(ctx, "school-2")
	if err != nil {
		t.Fatalf("Counts() failed, %v", err)
	}
	expected := school.Counts{Students: 1, Teachers: 1, Classes: 1, Subjects: 1}
	if counts != expected {
		t.Errorf("Counts() = %+v; expected %+v", counts, expected)
	}
}

func TestServiceDeleteAllForAdminPartialFailureIsRetryable(t *testing.T) {
	ctx := context.Background()
	repo := inmemdb.NewSchoolRepository(inmemdb.NewDB())
	svc := school.NewService(repo)

	seedSchool(t, svc, "school-1")

	repo.FailOn = "teachers"
	repo.FailErr = errors.New("write concern error")

	err := svc.DeleteAllForAdmin(ctx, "school-1")
	if err == nil {
		t.Fatal("DeleteAllForAdmin() passed; expected failure")
	}
	if errors.Cause(err) != repo.FailErr {
		t.Errorf("DeleteAllForAdmin() = %v; expected cause %v", err, repo.FailErr)
	}
	// collections before the failure point stay deleted
	if !reflect.DeepEqual(repo.DeletedCollections, []string{"classes", "students"}) {
		t.Errorf("deleted collections = %v; expected [classes students]", repo.DeletedCollections)
	}

	// a retry finishes the job
	repo.FailOn = ""
	repo.FailErr = nil
	repo.DeletedCollections = nil
	if err = svc.DeleteAllForAdmin(ctx, "school-1"); err != nil {
		t.Fatalf("retried DeleteAllForAdmin() failed, %v", err)
	}
	if !reflect.DeepEqual(repo.DeletedCollections, school.CascadeOrder) {
		t.Errorf("deleted collections = %v; expected %v", repo.DeletedCollections, school.CascadeOrder)
	}

	counts, err := svc.Counts(ctx, "school-1")
	if err != nil {
		t.Fatalf("Counts() failed, %v", err)
	}
	if counts != (school.Counts{}) {
		t.Errorf("Counts() = %+v; expected all zero", counts)
	}
}
