package models

type TotalRankRow struct {
	Rank      int    `json:"rank" bson:"rank"`
	Total     int    `json:"total" bson:"total"`
	AccountID string `json:"account_id" bson:"account_id"`
	Surname   string `json:"surname" bson:"surname"`
	GivenName string `json:"given_name" bson:"given_name"`
}

type ProblemRankRow struct {
	Rank        int    `json:"rank" bson:"rank"`
	Date        int64  `json:"date" bson:"date"`
	SubmittedAt string `json:"submitted_at" bson:"submitted_at"`
	AccountID   string `json:"account_id" bson:"account_id"`
	Surname     string `json:"surname" bson:"surname"`
	GivenName   string `json:"given_name" bson:"given_name"`
}

type ProblemRanking struct {
	ProblemID string           `json:"problem_id" bson:"problem_id"`
	Rows      []ProblemRankRow `json:"rows" bson:"rows"`
}

// RankingReport bundles both leaderboards computed from one store snapshot.
type RankingReport struct {
	Day       string           `json:"day" bson:"day"`
	Problems  ProblemList      `json:"problems" bson:"problems"`
	Total     []TotalRankRow   `json:"total" bson:"total"`
	ByProblem []ProblemRanking `json:"by_problem" bson:"by_problem"`
}

func (r RankingReport) Problem(problemID string) (ProblemRanking, bool) {
	for _, p := range r.ByProblem {
		if p.ProblemID == problemID {
			return p, true
		}
	}
	return ProblemRanking{}, false
}
