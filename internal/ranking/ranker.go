package ranking

import (
	"sort"

	"github.com/nshrhm/aoj-submission-manager/internal/models"
)

// Total ranks users by the sum of their scores, descending, ties ordered
// by account id. Users with no credit are left out. Equal totals share a
// rank and the next distinct total takes its 1-based position, so A=100,
// B=100, C=90 rank 1, 1, 3.
func Total(users []models.UserRecord, problems models.ProblemList) []models.TotalRankRow {
	type entry struct {
		total int
		user  models.UserRecord
	}
	entries := make([]entry, 0, len(users))
	for _, u := range users {
		total := u.Total(problems)
		if total > 0 {
			entries = append(entries, entry{total: total, user: u})
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].total != entries[j].total {
			return entries[i].total > entries[j].total
		}
		return entries[i].user.AccountID < entries[j].user.AccountID
	})

	out := make([]models.TotalRankRow, len(entries))
	rank := 0
	for i, e := range entries {
		if i == 0 || e.total != entries[i-1].total {
			rank = i + 1
		}
		out[i] = models.TotalRankRow{
			Rank:      rank,
			Total:     e.total,
			AccountID: e.user.AccountID,
			Surname:   e.user.Surname,
			GivenName: e.user.GivenName,
		}
	}
	return out
}

// ByProblem ranks users who scored on problemID by submission time,
// earliest first, with sequential ranks. Equal timestamps keep the input
// order.
func ByProblem(users []models.UserRecord, problemID string, tf TimeFormat) []models.ProblemRankRow {
	selected := make([]models.UserRecord, 0, len(users))
	for _, u := range users {
		s := u.Slot(problemID)
		if s.Score > 0 && s.Date > 0 {
			selected = append(selected, u)
		}
	}

	sort.SliceStable(selected, func(i, j int) bool {
		return selected[i].Slot(problemID).Date < selected[j].Slot(problemID).Date
	})

	out := make([]models.ProblemRankRow, len(selected))
	for i, u := range selected {
		date := u.Slot(problemID).Date
		out[i] = models.ProblemRankRow{
			Rank:        i + 1,
			Date:        date,
			SubmittedAt: tf.Format(date),
			AccountID:   u.AccountID,
			Surname:     u.Surname,
			GivenName:   u.GivenName,
		}
	}
	return out
}

// Build computes both leaderboards for one store snapshot.
func Build(users []models.UserRecord, problems models.ProblemList, tf TimeFormat) models.RankingReport {
	report := models.RankingReport{
		Problems:  problems,
		Total:     Total(users, problems),
		ByProblem: make([]models.ProblemRanking, 0, len(problems)),
	}
	for _, id := range problems {
		report.ByProblem = append(report.ByProblem, models.ProblemRanking{
			ProblemID: id,
			Rows:      ByProblem(users, id, tf),
		})
	}
	return report
}
