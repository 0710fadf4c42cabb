package models

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ProblemList is the ordered set of problem ids. Its order defines the
// column layout of every stored record.
type ProblemList []string

func (p ProblemList) Validate() error {
	if len(p) == 0 {
		return errors.New("problem list is empty")
	}
	seen := make(map[string]bool, len(p))
	for i, id := range p {
		if strings.TrimSpace(id) == "" {
			return fmt.Errorf("problem #%d has an empty id", i+1)
		}
		if seen[id] {
			return fmt.Errorf("problem %s is listed twice", id)
		}
		seen[id] = true
	}
	return nil
}

func (p ProblemList) Index(problemID string) int {
	for i, id := range p {
		if id == problemID {
			return i
		}
	}
	return -1
}

// UserRecord is one student row. Identity fields are never modified by
// reconciliation, normalization or ranking.
type UserRecord struct {
	StudentID string `db:"student_id" json:"student_id" bson:"student_id"`
	Surname   string `db:"surname" json:"surname" bson:"surname"`
	GivenName string `db:"given_name" json:"given_name" bson:"given_name"`
	AccountID string `db:"account_id" json:"account_id" bson:"account_id" validate:"required"`

	Slots map[string]SubmissionState `db:"-" json:"slots" bson:"slots" validate:"dive"`
}

func NewUserRecord(studentID, surname, givenName, accountID string) UserRecord {
	return UserRecord{
		StudentID: studentID,
		Surname:   surname,
		GivenName: givenName,
		AccountID: accountID,
		Slots:     make(map[string]SubmissionState),
	}
}

// Slot returns the state stored for problemID, or the never-submitted
// state when the record has no such slot.
func (u UserRecord) Slot(problemID string) SubmissionState {
	if s, ok := u.Slots[problemID]; ok {
		return s
	}
	return NeverSubmitted()
}

func (u *UserRecord) SetSlot(problemID string, s SubmissionState) {
	if u.Slots == nil {
		u.Slots = make(map[string]SubmissionState)
	}
	u.Slots[problemID] = s
}

// Total sums the scores of the problems in the list.
func (u UserRecord) Total(problems ProblemList) int {
	total := 0
	for _, id := range problems {
		total += u.Slot(id).Score
	}
	return total
}

// WithSlots returns a copy of u that owns a fresh slot map holding exactly
// one state per problem in the list.
func (u UserRecord) WithSlots(problems ProblemList) UserRecord {
	out := u
	out.Slots = make(map[string]SubmissionState, len(problems))
	for _, id := range problems {
		out.Slots[id] = u.Slot(id)
	}
	return out
}

func (u UserRecord) Validate() error {
	validate := validator.New()
	return validate.Struct(u)
}
