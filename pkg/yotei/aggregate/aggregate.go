// Package aggregate turns raw availability marks into the organizer-facing
// summary. Build is a pure function of its inputs: no storage access, no
// side effects, identical output for identical input. Staleness is the
// caller's concern.
package aggregate

import (
	"sort"

	"github.com/example/yotei/pkg/yotei/models"
)

// CandidateResult is one candidate slot with its status counts. The counts
// only cover participants: users who touched at least one cell of the
// schedule or left a comment. Users who never submitted anything are not
// counted as undecided voters.
type CandidateResult struct {
	CandidateID  uint   `json:"candidate_id"`
	Label        string `json:"label"`
	DisplayOrder int    `json:"display_order"`
	Yes          int    `json:"yes"`
	No           int    `json:"no"`
	Undecided    int    `json:"undecided"`
}

// ParticipantRow is one participant's display row: a status per candidate
// (in display order, defaulting to undecided) plus their comment.
type ParticipantRow struct {
	UserID      string                      `json:"user_id"`
	DisplayName string                      `json:"display_name"`
	Statuses    []models.AvailabilityStatus `json:"statuses"`
	Comment     string                      `json:"comment"`
}

// Summary is the aggregated view of one schedule
type Summary struct {
	Candidates   []CandidateResult `json:"candidates"`
	Participants []ParticipantRow  `json:"participants"`
	// Ranking holds the candidates ordered best-first: yes count
	// descending, display order ascending on ties.
	Ranking []CandidateResult `json:"ranking"`
}

// Build computes the summary for one schedule from its candidate set, the
// availability matrix slice and comment slice for that schedule, and a
// display-name lookup. Participants are ordered by user id and candidates
// by display order, so repeated runs on identical input yield identical
// output.
func Build(
	candidates []models.Candidate,
	availabilities []models.Availability,
	comments map[string]string,
	names map[string]string,
) Summary {
	ordered := make([]models.Candidate, len(candidates))
	copy(ordered, candidates)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].DisplayOrder < ordered[j].DisplayOrder
	})

	// marks[userID][candidateID] = explicit status
	marks := make(map[string]map[uint]models.AvailabilityStatus)
	for _, a := range availabilities {
		if marks[a.UserID] == nil {
			marks[a.UserID] = make(map[uint]models.AvailabilityStatus)
		}
		marks[a.UserID][a.CandidateID] = a.Status
	}

	// The participant set is the union of users with any mark and users
	// with a comment.
	seen := make(map[string]bool)
	var participants []string
	for userID := range marks {
		if !seen[userID] {
			seen[userID] = true
			participants = append(participants, userID)
		}
	}
	for userID := range comments {
		if !seen[userID] {
			seen[userID] = true
			participants = append(participants, userID)
		}
	}
	sort.Strings(participants)

	results := make([]CandidateResult, len(ordered))
	for i, c := range ordered {
		results[i] = CandidateResult{
			CandidateID:  c.ID,
			Label:        c.Label,
			DisplayOrder: c.DisplayOrder,
		}
	}

	rows := make([]ParticipantRow, len(participants))
	for pi, userID := range participants {
		row := ParticipantRow{
			UserID:      userID,
			DisplayName: names[userID],
			Statuses:    make([]models.AvailabilityStatus, len(ordered)),
			Comment:     comments[userID],
		}
		if row.DisplayName == "" {
			row.DisplayName = userID
		}
		for ci, c := range ordered {
			status, ok := marks[userID][c.ID]
			if !ok {
				// A cell the participant never set reads as undecided,
				// same as an explicitly stored undecided mark.
				status = models.StatusUndecided
			}
			row.Statuses[ci] = status
			switch status {
			case models.StatusYes:
				results[ci].Yes++
			case models.StatusNo:
				results[ci].No++
			default:
				results[ci].Undecided++
			}
		}
		rows[pi] = row
	}

	ranking := make([]CandidateResult, len(results))
	copy(ranking, results)
	sort.SliceStable(ranking, func(i, j int) bool {
		if ranking[i].Yes != ranking[j].Yes {
			return ranking[i].Yes > ranking[j].Yes
		}
		return ranking[i].DisplayOrder < ranking[j].DisplayOrder
	})

	return Summary{
		Candidates:   results,
		Participants: rows,
		Ranking:      ranking,
	}
}
