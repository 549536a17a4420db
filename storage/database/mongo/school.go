package mongodb

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/school"
)

type (
	classDoc struct {
		ID        primitive.ObjectID `bson:"_id,omitempty"`
		Name      string             `bson:"name"`
		School    string             `bson:"school"`
		CreatedAt time.Time          `bson:"created_at"`
	}

	studentDoc struct {
		ID        primitive.ObjectID `bson:"_id,omitempty"`
		Name      string             `bson:"name"`
		RollNum   int                `bson:"roll_num"`
		ClassID   string             `bson:"class_id,omitempty"`
		School    string             `bson:"school"`
		CreatedAt time.Time          `bson:"created_at"`
	}

	teacherDoc struct {
		ID        primitive.ObjectID `bson:"_id,omitempty"`
		Name      string             `bson:"name"`
		Email     string             `bson:"email,omitempty"`
		ClassID   string             `bson:"class_id,omitempty"`
		School    string             `bson:"school"`
		CreatedAt time.Time          `bson:"created_at"`
	}

	subjectDoc struct {
		ID        primitive.ObjectID `bson:"_id,omitempty"`
		Name      string             `bson:"name"`
		Code      string             `bson:"code"`
		Sessions  int                `bson:"sessions,omitempty"`
		ClassID   string             `bson:"class_id,omitempty"`
		School    string             `bson:"school"`
		CreatedAt time.Time          `bson:"created_at"`
	}

	noticeDoc struct {
		ID        primitive.ObjectID `bson:"_id,omitempty"`
		Title     string             `bson:"title"`
		Details   string             `bson:"details"`
		Date      time.Time          `bson:"date"`
		School    string             `bson:"school"`
		CreatedAt time.Time          `bson:"created_at"`
	}

	complaintDoc struct {
		ID        primitive.ObjectID `bson:"_id,omitempty"`
		User      string             `bson:"user"`
		Complaint string             `bson:"complaint"`
		Date      time.Time          `bson:"date"`
		School    string             `bson:"school"`
		CreatedAt time.Time          `bson:"created_at"`
	}
)

// SchoolRepository persists the dependent entities, one collection per type.
// Collection names follow school.CascadeOrder.
type SchoolRepository struct {
	db *DB
}

var _ school.Repository = (*SchoolRepository)(nil)

func NewSchoolRepository(db *DB) *SchoolRepository {
	return &SchoolRepository{db: db}
}

func (repo *SchoolRepository) collection(name string) *mongo.Collection {
	return repo.db.Database.Collection(name)
}

func (repo *SchoolRepository) insert(ctx context.Context, collection string, doc interface{}) (string, error) {
	res, err := repo.collection(collection).InsertOne(ctx, doc)
	if err != nil {
		return "", errors.Wrapf(err, "inserting into %s", collection)
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		// the driver handed back an unusable ID; storage can no longer be trusted
		return "", core.NewShutdownError("unexpected inserted ID type in " + collection)
	}
	return oid.Hex(), nil
}

func (repo *SchoolRepository) find(ctx context.Context, collection, schoolID string, decode func(*mongo.Cursor) error) error {
	cursor, err := repo.collection(collection).Find(ctx, bson.M{"school": schoolID})
	if err != nil {
		return errors.Wrapf(err, "querying %s", collection)
	}
	defer func() { _ = cursor.Close(ctx) }()

	for cursor.Next(ctx) {
		if err = decode(cursor); err != nil {
			return errors.Wrapf(err, "decoding %s", collection)
		}
	}
	return errors.Wrapf(cursor.Err(), "iterating %s", collection)
}

func (repo *SchoolRepository) CreateClass(ctx context.Context, cls school.Class) (school.Class, error) {
	id, err := repo.insert(ctx, "classes", classDoc{
		Name: cls.Name, School: cls.School, CreatedAt: cls.CreatedAt,
	})
	if err != nil {
		return school.Class{}, err
	}
	cls.ID = id
	return cls, nil
}

func (repo *SchoolRepository) QueryClasses(ctx context.Context, schoolID string) ([]school.Class, error) {
	res := make([]school.Class, 0)
	err := repo.find(ctx, "classes", schoolID, func(cursor *mongo.Cursor) error {
		var doc classDoc
		if err := cursor.Decode(&doc); err != nil {
			return err
		}
		res = append(res, school.Class{
			ID: doc.ID.Hex(), Name: doc.Name, School: doc.School, CreatedAt: doc.CreatedAt,
		})
		return nil
	})
	return res, err
}

func (repo *SchoolRepository) CreateStudent(ctx context.Context, std school.Student) (school.Student, error) {
	id, err := repo.insert(ctx, "students", studentDoc{
		Name: std.Name, RollNum: std.RollNum, ClassID: std.ClassID,
		School: std.School, CreatedAt: std.CreatedAt,
	})
	if err != nil {
		return school.Student{}, err
	}
	std.ID = id
	return std, nil
}

func (repo *SchoolRepository) QueryStudents(ctx context.Context, schoolID string) ([]school.Student, error) {
	res := make([]school.Student, 0)
	err := repo.find(ctx, "students", schoolID, func(cursor *mongo.Cursor) error {
		var doc studentDoc
		if err := cursor.Decode(&doc); err != nil {
			return err
		}
		res = append(res, school.Student{
			ID: doc.ID.Hex(), Name: doc.Name, RollNum: doc.RollNum, ClassID: doc.ClassID,
			School: doc.School, CreatedAt: doc.CreatedAt,
		})
		return nil
	})
	return res, err
}

func (repo *SchoolRepository) CreateTeacher(ctx context.Context, tch school.Teacher) (school.Teacher, error) {
	id, err := repo.insert(ctx, "teachers", teacherDoc{
		Name: tch.Name, Email: tch.Email, ClassID: tch.ClassID,
		School: tch.School, CreatedAt: tch.CreatedAt,
	})
	if err != nil {
		return school.Teacher{}, err
	}
	tch.ID = id
	return tch, nil
}

func (repo *SchoolRepository) QueryTeachers(ctx context.Context, schoolID string) ([]school.Teacher, error) {
	res := make([]school.Teacher, 0)
	err := repo.find(ctx, "teachers", schoolID, func(cursor *mongo.Cursor) error {
		var doc teacherDoc
		if err := cursor.Decode(&doc); err != nil {
			return err
		}
		res = append(res, school.Teacher{
			ID: doc.ID.Hex(), Name: doc.Name, Email: doc.Email, ClassID: doc.ClassID,
			School: doc.School, CreatedAt: doc.CreatedAt,
		})
		return nil
	})
	return res, err
}

func (repo *SchoolRepository) CreateSubject(ctx context.Context, sub school.Subject) (school.Subject, error) {
	id, err := repo.insert(ctx, "subjects", subjectDoc{
		Name: sub.Name, Code: sub.Code, Sessions: sub.Sessions, ClassID: sub.ClassID,
		School: sub.School, CreatedAt: sub.CreatedAt,
	})
	if err != nil {
		return school.Subject{}, err
	}
	sub.ID = id
	return sub, nil
}

func (repo *SchoolRepository) QuerySubjects(ctx context.Context, schoolID string) ([]school.Subject, error) {
	res := make([]school.Subject, 0)
	err := repo.find(ctx, "subjects", schoolID, func(cursor *mongo.Cursor) error {
		var doc subjectDoc
		if err := cursor.Decode(&doc); err != nil {
			return err
		}
		res = append(res, school.Subject{
			ID: doc.ID.Hex(), Name: doc.Name, Code: doc.Code, Sessions: doc.Sessions,
			ClassID: doc.ClassID, School: doc.School, CreatedAt: doc.CreatedAt,
		})
		return nil
	})
	return res, err
}

func (repo *SchoolRepository) CreateNotice(ctx context.Context, ntc school.Notice) (school.Notice, error) {
	id, err := repo.insert(ctx, "notices", noticeDoc{
		Title: ntc.Title, Details: ntc.Details, Date: ntc.Date,
		School: ntc.School, CreatedAt: ntc.CreatedAt,
	})
	if err != nil {
		return school.Notice{}, err
	}
	ntc.ID = id
	return ntc, nil
}

func (repo *SchoolRepository) QueryNotices(ctx context.Context, schoolID string) ([]school.Notice, error) {
	res := make([]school.Notice, 0)
	err := repo.find(ctx, "notices", schoolID, func(cursor *mongo.Cursor) error {
		var doc noticeDoc
		if err := cursor.Decode(&doc); err != nil {
			return err
		}
		res = append(res, school.Notice{
			ID: doc.ID.Hex(), Title: doc.Title, Details: doc.Details, Date: doc.Date,
			School: doc.School, CreatedAt: doc.CreatedAt,
		})
		return nil
	})
	return res, err
}

func (repo *SchoolRepository) CreateComplaint(ctx context.Context, cpl school.Complaint) (school.Complaint, error) {
	id, err := repo.insert(ctx, "complaints", complaintDoc{
		User: cpl.User, Complaint: cpl.Complaint, Date: cpl.Date,
		School: cpl.School, CreatedAt: cpl.CreatedAt,
	})
	if err != nil {
		return school.Complaint{}, err
	}
	cpl.ID = id
	return cpl, nil
}

func (repo *SchoolRepository) QueryComplaints(ctx context.Context, schoolID string) ([]school.Complaint, error) {
	res := make([]school.Complaint, 0)
	err := repo.find(ctx, "complaints", schoolID, func(cursor *mongo.Cursor) error {
		var doc complaintDoc
		if err := cursor.Decode(&doc); err != nil {
			return err
		}
		res = append(res, school.Complaint{
			ID: doc.ID.Hex(), User: doc.User, Complaint: doc.Complaint, Date: doc.Date,
			School: doc.School, CreatedAt: doc.CreatedAt,
		})
		return nil
	})
	return res, err
}

func (repo *SchoolRepository) CountByAdmin(ctx context.Context, schoolID string) (school.Counts, error) {
	filter := bson.M{"school": schoolID}
	var counts school.Counts
	var err error

	if counts.Students, err = repo.collection("students").CountDocuments(ctx, filter); err != nil {
		return school.Counts{}, errors.Wrap(err, "counting students")
	}
	if counts.Teachers, err = repo.collection("teachers").CountDocuments(ctx, filter); err != nil {
		return school.Counts{}, errors.Wrap(err, "counting teachers")
	}
	if counts.Classes, err = repo.collection("classes").CountDocuments(ctx, filter); err != nil {
		return school.Counts{}, errors.Wrap(err, "counting classes")
	}
	if counts.Subjects, err = repo.collection("subjects").CountDocuments(ctx, filter); err != nil {
		return school.Counts{}, errors.Wrap(err, "counting subjects")
	}
	return counts, nil
}

// DeleteByAdmin runs one DeleteMany per collection following
// school.CascadeOrder. Not transactional: it aborts on the first failure and
// leaves prior deletions applied.
func (repo *SchoolRepository) DeleteByAdmin(ctx context.Context, schoolID string) error {
	filter := bson.M{"school": schoolID}
	for _, collection := range school.CascadeOrder {
		if _, err := repo.collection(collection).DeleteMany(ctx, filter); err != nil {
			return errors.Wrapf(err, "bulk-deleting %s", collection)
		}
	}
	return nil
}
