package repositories

import (
	"github.com/maxaizer/jobmarket/internal/docstore"
	"github.com/maxaizer/jobmarket/internal/entities"
)

// OwnerRelation links an employer to the jobs and applications they own.
type OwnerRelation interface {
	OwnerKey(owner entities.Identity) string
	JobsOwnedBy(owner entities.Identity) docstore.Query
	ApplicationsOwnedBy(owner entities.Identity) docstore.Query
	Owns(owner entities.Identity, createdBy string) bool
}

// EmailRelation joins on the owner's email stored in "createdBy".
// Fragile: changing an account email orphans every record created under the old one.
// Owns matches "createdBy" exactly like the owner queries do, so a record stored
// with a non-normalized email is neither listed nor editable by its owner.
type EmailRelation struct{}

func (EmailRelation) OwnerKey(owner entities.Identity) string {
	return entities.NormalizeEmail(owner.Email)
}

func (r EmailRelation) JobsOwnedBy(owner entities.Identity) docstore.Query {
	return docstore.Collection(JobsCollection).Where("createdBy", docstore.Equal, r.OwnerKey(owner))
}

func (r EmailRelation) ApplicationsOwnedBy(owner entities.Identity) docstore.Query {
	return docstore.Collection(ApplicationsCollection).Where("createdBy", docstore.Equal, r.OwnerKey(owner))
}

func (r EmailRelation) Owns(owner entities.Identity, createdBy string) bool {
	key := r.OwnerKey(owner)
	return key != "" && key == createdBy
}
