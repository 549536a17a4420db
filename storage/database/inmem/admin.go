package inmemdb

import (
	"context"

	"github.com/google/uuid"

	"github.com/trezcool/shule/core/admin"
)

type adminRepository struct {
	db *DB
}

var _ admin.Repository = (*adminRepository)(nil)

func NewAdminRepository(db *DB) admin.Repository {
	return &adminRepository{db: db}
}

func (repo *adminRepository) query() []admin.Admin {
	admins := make([]admin.Admin, 0, len(repo.db.admins))
	for _, adm := range repo.db.admins {
		admins = append(admins, *adm)
	}
	return admins
}

func (repo *adminRepository) CheckEmailUniqueness(_ context.Context, email string, excludedAdmins ...admin.Admin) error {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, adm := range repo.query() {
		if adm.Email == email && !isExcluded(adm, excludedAdmins) {
			return admin.ErrEmailExists
		}
	}
	return nil
}

func (repo *adminRepository) CreateAdmin(_ context.Context, adm admin.Admin) (admin.Admin, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	adm.ID = uuid.New().String()
	repo.db.admins[adm.ID] = &adm
	return adm, nil
}

func (repo *adminRepository) GetAdmin(_ context.Context, filter admin.GetFilter) (admin.Admin, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if filter.ID != "" {
		if adm, ok := repo.db.admins[filter.ID]; ok {
			return *adm, nil
		}
		return admin.Admin{}, admin.ErrNotFound
	}
	for _, adm := range repo.query() {
		if adm.Email == filter.Email {
			return adm, nil
		}
	}
	return admin.Admin{}, admin.ErrNotFound
}

func (repo *adminRepository) QueryAllAdmins(_ context.Context) ([]admin.Admin, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return repo.query(), nil
}

func (repo *adminRepository) UpdateAdmin(_ context.Context, adm admin.Admin) (admin.Admin, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	// only save set fields
	origAdm, ok := repo.db.admins[adm.ID]
	if !ok {
		return admin.Admin{}, admin.ErrNotFound
	}
	if adm.Name != "" {
		origAdm.Name = adm.Name
	}
	if adm.Email != "" {
		origAdm.Email = adm.Email
	}
	if adm.PasswordHash != nil {
		origAdm.PasswordHash = adm.PasswordHash
	}
	origAdm.UpdatedAt = adm.UpdatedAt

	repo.db.admins[adm.ID] = origAdm
	return *origAdm, nil
}

func (repo *adminRepository) DeleteAdmin(_ context.Context, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.admins[id]; !ok {
		return admin.ErrNotFound
	}
	delete(repo.db.admins, id)
	return nil
}

func isExcluded(adm admin.Admin, excludedAdmins []admin.Admin) bool {
	for _, excl := range excludedAdmins {
		if excl.ID == adm.ID {
			return true
		}
	}
	return false
}
