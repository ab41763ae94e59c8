package match

import (
	"fmt"
	"math"
)

// DefaultCutoff is the minimum total score, in percent, for a candidate to be
// accepted as a match.
const DefaultCutoff = 60.0

// Query holds the operator-supplied search fields. Any of them may be empty.
type Query struct {
	Name       string `json:"name"`
	BirthDate  string `json:"birth_date"`
	MotherName string `json:"mother_name"`
}

// Candidate is a record that can be ranked against a Query. Implementations
// expose the three compared attributes; everything else on the record is
// carried through untouched.
type Candidate interface {
	MatchName() string
	MatchBirthDate() string
	MatchMotherName() string
}

// Scores are the per-field and aggregate percentages of one comparison.
type Scores struct {
	Name       float64
	BirthDate  float64
	MotherName float64
	Total      float64
}

// FormattedScores is the display form of Scores.
type FormattedScores struct {
	Name       string `json:"name"`
	BirthDate  string `json:"birth_date"`
	MotherName string `json:"mother_name"`
	Total      string `json:"total"`
}

// Formatted renders every score with one decimal place and a % suffix.
func (s Scores) Formatted() FormattedScores {
	return FormattedScores{
		Name:       Percent(s.Name),
		BirthDate:  Percent(s.BirthDate),
		MotherName: Percent(s.MotherName),
		Total:      Percent(s.Total),
	}
}

// Percent formats v as "12.3%". Halves round away from zero, so 56.25
// renders as "56.3%".
func Percent(v float64) string {
	return fmt.Sprintf("%.1f%%", math.Round(v*10)/10)
}

// Result is the outcome of FindBestMatch. When Matched is false, Record is the
// zero value and Scores.Total still reports the best total seen so callers can
// tell the operator how close the search came.
type Result[C Candidate] struct {
	Record  C
	Matched bool
	Scores  Scores
}

// Score compares q against a single candidate. Names use Similarity, birth
// dates must be equal strings, and the name counts twice:
// total = (name*2 + birthDate + motherName) / 4.
func Score(q Query, c Candidate) Scores {
	s := Scores{
		Name:       Similarity(q.Name, c.MatchName()),
		MotherName: Similarity(q.MotherName, c.MatchMotherName()),
	}
	if q.BirthDate == c.MatchBirthDate() {
		s.BirthDate = 100
	}
	s.Total = (s.Name*2 + s.BirthDate + s.MotherName) / 4
	return s
}

// FindBestMatch scores every candidate in order and keeps the one with the
// highest total. A candidate only replaces the current best when its total is
// strictly greater, so the first of several equally scored candidates wins.
// Candidates whose total is 0 are never selected.
//
// The best candidate is reported as a match when its total is at least cutoff.
func FindBestMatch[C Candidate](q Query, candidates []C, cutoff float64) Result[C] {
	var (
		best      C
		bestFound bool
		bestScore Scores
	)

	for _, c := range candidates {
		s := Score(q, c)
		if s.Total > bestScore.Total {
			best = c
			bestFound = true
			bestScore = s
		}
	}

	if bestFound && bestScore.Total >= cutoff {
		return Result[C]{Record: best, Matched: true, Scores: bestScore}
	}
	return Result[C]{Scores: Scores{Total: bestScore.Total}}
}
