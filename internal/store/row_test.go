package store

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nshrhm/aoj-submission-manager/internal/models"
)

func TestDecodeRow(t *testing.T) {
	problems := models.ProblemList{"ITP1_1_A", "ITP1_1_B"}

	t.Run("full row", func(t *testing.T) {
		row := []string{"123456", "テスト", "太郎", "test1",
			"100", "1683936000000", "12345",
			"80", "1683936100000", "12346"}

		u := DecodeRow(row, problems)

		assert.Equal(t, "123456", u.StudentID)
		assert.Equal(t, "テスト", u.Surname)
		assert.Equal(t, "太郎", u.GivenName)
		assert.Equal(t, "test1", u.AccountID)
		assert.Equal(t, models.SubmissionState{Score: 100, Date: 1683936000000, JudgeID: 12345}, u.Slot("ITP1_1_A"))
		assert.Equal(t, models.SubmissionState{Score: 80, Date: 1683936100000, JudgeID: 12346}, u.Slot("ITP1_1_B"))
		assert.Equal(t, row, EncodeRow(u, problems))
	})

	t.Run("identity only row is padded", func(t *testing.T) {
		u := DecodeRow([]string{"123456", "テスト", "太郎", "test1"}, problems)

		assert.Len(t, u.Slots, 2)
		assert.True(t, u.Slot("ITP1_1_A").IsNeverSubmitted())
		assert.Equal(t,
			[]string{"123456", "テスト", "太郎", "test1", "0", "0", "-1", "0", "0", "-1"},
			EncodeRow(u, problems),
		)
	})

	t.Run("partial problem group counts as missing", func(t *testing.T) {
		u := DecodeRow([]string{"1", "a", "b", "c", "100", "5", "7", "90", "6"}, problems)

		assert.Equal(t, 100, u.Slot("ITP1_1_A").Score)
		assert.True(t, u.Slot("ITP1_1_B").IsNeverSubmitted())
	})

	t.Run("short identity", func(t *testing.T) {
		u := DecodeRow([]string{"1", "a"}, problems)
		assert.Equal(t, "1", u.StudentID)
		assert.Equal(t, "", u.AccountID)
	})

	t.Run("malformed values are coerced", func(t *testing.T) {
		u := DecodeRow([]string{"1", "a", "b", "c", "x", "", "abc"}, problems[:1])
		assert.True(t, u.Slot("ITP1_1_A").IsNeverSubmitted())
	})
}
