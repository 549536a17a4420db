package mongodb

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/admin"
)

const adminCollection = "admins"

// adminDoc is the stored shape of an admin.Admin. The password hash lives in
// a `password` field; the domain model's json tags keep it out of responses.
type adminDoc struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Name         string             `bson:"name"`
	Email        string             `bson:"email"`
	Role         string             `bson:"role"`
	SchoolName   string             `bson:"schoolName"`
	PasswordHash []byte             `bson:"password"`
	CreatedAt    time.Time          `bson:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at"`
}

func (doc adminDoc) toAdmin() admin.Admin {
	return admin.Admin{
		ID:           doc.ID.Hex(),
		Name:         doc.Name,
		Email:        doc.Email,
		Role:         doc.Role,
		SchoolName:   doc.SchoolName,
		PasswordHash: doc.PasswordHash,
		CreatedAt:    doc.CreatedAt,
		UpdatedAt:    doc.UpdatedAt,
	}
}

type AdminRepository struct {
	collection *mongo.Collection
}

var _ admin.Repository = (*AdminRepository)(nil)

func NewAdminRepository(db *DB) *AdminRepository {
	return &AdminRepository{collection: db.Database.Collection(adminCollection)}
}

func (repo *AdminRepository) CheckEmailUniqueness(ctx context.Context, email string, excludedAdmins ...admin.Admin) error {
	filter := bson.M{"email": email}
	if len(excludedAdmins) > 0 {
		ids := make([]primitive.ObjectID, 0, len(excludedAdmins))
		for _, adm := range excludedAdmins {
			oid, err := primitive.ObjectIDFromHex(adm.ID)
			if err != nil {
				return errors.Wrap(err, "parsing excluded admin ID")
			}
			ids = append(ids, oid)
		}
		filter["_id"] = bson.M{"$nin": ids}
	}

	count, err := repo.collection.CountDocuments(ctx, filter)
	if err != nil {
		return errors.Wrap(err, "checking email uniqueness")
	}
	if count > 0 {
		return admin.ErrEmailExists
	}
	return nil
}

func (repo *AdminRepository) CreateAdmin(ctx context.Context, adm admin.Admin) (admin.Admin, error) {
	res, err := repo.collection.InsertOne(ctx, adminDoc{
		Name:         adm.Name,
		Email:        adm.Email,
		Role:         adm.Role,
		SchoolName:   adm.SchoolName,
		PasswordHash: adm.PasswordHash,
		CreatedAt:    adm.CreatedAt,
		UpdatedAt:    adm.UpdatedAt,
	})
	if err != nil {
		return admin.Admin{}, errors.Wrap(err, "inserting admin")
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return admin.Admin{}, core.NewShutdownError("unexpected inserted ID type in " + adminCollection)
	}
	adm.ID = oid.Hex()
	return adm, nil
}

func (repo *AdminRepository) GetAdmin(ctx context.Context, filter admin.GetFilter) (admin.Admin, error) {
	query := bson.M{}
	if filter.ID != "" {
		oid, err := primitive.ObjectIDFromHex(filter.ID)
		if err != nil {
			return admin.Admin{}, admin.ErrNotFound
		}
		query["_id"] = oid
	}
	if filter.Email != "" {
		query["email"] = filter.Email
	}

	var doc adminDoc
	if err := repo.collection.FindOne(ctx, query).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return admin.Admin{}, admin.ErrNotFound
		}
		return admin.Admin{}, errors.Wrap(err, "finding admin")
	}
	return doc.toAdmin(), nil
}

func (repo *AdminRepository) QueryAllAdmins(ctx context.Context) ([]admin.Admin, error) {
	cursor, err := repo.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, errors.Wrap(err, "querying admins")
	}
	defer func() { _ = cursor.Close(ctx) }()

	admins := make([]admin.Admin, 0)
	for cursor.Next(ctx) {
		var doc adminDoc
		if err = cursor.Decode(&doc); err != nil {
			return nil, errors.Wrap(err, "decoding admin")
		}
		admins = append(admins, doc.toAdmin())
	}
	if err = cursor.Err(); err != nil {
		return nil, errors.Wrap(err, "iterating admins")
	}
	return admins, nil
}

func (repo *AdminRepository) UpdateAdmin(ctx context.Context, adm admin.Admin) (admin.Admin, error) {
	oid, err := primitive.ObjectIDFromHex(adm.ID)
	if err != nil {
		return admin.Admin{}, admin.ErrNotFound
	}

	// only save set fields
	set := bson.M{"updated_at": adm.UpdatedAt}
	if adm.Name != "" {
		set["name"] = adm.Name
	}
	if adm.Email != "" {
		set["email"] = adm.Email
	}
	if adm.PasswordHash != nil {
		set["password"] = adm.PasswordHash
	}

	var doc adminDoc
	err = repo.collection.FindOneAndUpdate(
		ctx,
		bson.M{"_id": oid},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return admin.Admin{}, admin.ErrNotFound
		}
		return admin.Admin{}, errors.Wrap(err, "updating admin")
	}
	return doc.toAdmin(), nil
}

func (repo *AdminRepository) DeleteAdmin(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return admin.ErrNotFound
	}

	res, err := repo.collection.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return errors.Wrap(err, "deleting admin")
	}
	if res.DeletedCount == 0 {
		return admin.ErrNotFound
	}
	return nil
}
