package repository

import (
	"strings"

	"github.com/rongwang/studyswap/internal/models"
)

// Tx is a working copy of the collections handed to View and Update.
// Records returned by Tx are copies; write them back with PutUser.
type Tx struct {
	users    []models.User
	listings []models.Listing
	readOnly bool

	changedUsers    map[string]struct{}
	changeOrder     []string
	listingsChanged bool
}

func newWriteTx(users []models.User, listings []models.Listing) *Tx {
	return &Tx{
		users:        append([]models.User(nil), users...),
		listings:     append([]models.Listing(nil), listings...),
		changedUsers: make(map[string]struct{}),
	}
}

// Users returns every user in creation order
func (tx *Tx) Users() []models.User {
	out := make([]models.User, len(tx.users))
	for i, u := range tx.users {
		out[i] = u.Clone()
	}
	return out
}

// UserByID looks a user up by id
func (tx *Tx) UserByID(id string) (models.User, bool) {
	if i := tx.userIndex(id); i >= 0 {
		return tx.users[i].Clone(), true
	}
	return models.User{}, false
}

// UserByEmail looks a user up by email, ignoring case
func (tx *Tx) UserByEmail(email string) (models.User, bool) {
	for _, u := range tx.users {
		if sameEmail(u.Email, email) {
			return u.Clone(), true
		}
	}
	return models.User{}, false
}

// UserByFederatedID looks a user up by identity provider subject
func (tx *Tx) UserByFederatedID(federatedID string) (models.User, bool) {
	for _, u := range tx.users {
		if u.FederatedID != nil && *u.FederatedID == federatedID {
			return u.Clone(), true
		}
	}
	return models.User{}, false
}

// InsertUser appends a new user. Emails are unique ignoring case.
func (tx *Tx) InsertUser(u models.User) error {
	if tx.readOnly {
		return ErrReadOnly
	}
	if _, exists := tx.UserByEmail(u.Email); exists {
		return models.ErrDuplicateEmail
	}

	tx.users = append(tx.users, u.Clone())
	tx.markUser(u.ID)
	return nil
}

// PutUser replaces the stored record with the same id
func (tx *Tx) PutUser(u models.User) error {
	if tx.readOnly {
		return ErrReadOnly
	}

	i := tx.userIndex(u.ID)
	if i < 0 {
		return models.ErrUnknownUser
	}

	// stored data may hold legacy pairs differing only by case; only an
	// email change is checked
	if tx.users[i].Email != u.Email {
		for j, other := range tx.users {
			if j != i && sameEmail(other.Email, u.Email) {
				return models.ErrDuplicateEmail
			}
		}
	}

	tx.users[i] = u.Clone()
	tx.markUser(u.ID)
	return nil
}

// Listings returns every listing in creation order
func (tx *Tx) Listings() []models.Listing {
	out := make([]models.Listing, len(tx.listings))
	for i, l := range tx.listings {
		out[i] = l.Clone()
	}
	return out
}

// InsertListing appends a listing
func (tx *Tx) InsertListing(l models.Listing) error {
	if tx.readOnly {
		return ErrReadOnly
	}

	tx.listings = append(tx.listings, l.Clone())
	tx.listingsChanged = true
	return nil
}

func (tx *Tx) userIndex(id string) int {
	for i, u := range tx.users {
		if u.ID == id {
			return i
		}
	}
	return -1
}

func (tx *Tx) markUser(id string) {
	if _, seen := tx.changedUsers[id]; !seen {
		tx.changedUsers[id] = struct{}{}
		tx.changeOrder = append(tx.changeOrder, id)
	}
}

func sameEmail(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
