package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/example/yotei/pkg/yotei/availability"
	"github.com/example/yotei/pkg/yotei/comments"
	"github.com/example/yotei/pkg/yotei/identity"
	"github.com/example/yotei/pkg/yotei/models"
	"github.com/example/yotei/pkg/yotei/schedules"
	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTestDB creates an in-memory SQLite database for testing
func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}
	return db
}

// setupFullServer creates a Gin engine with all routes registered.
// This mirrors the setup in cmd/yotei-server/main.go.
func setupFullServer(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		authHandler := identity.NewHandler(db, "http://localhost:8000")
		authHandler.RegisterRoutes(api.Group("/auth"))

		authed := api.Group("", identity.AuthMiddleware())
		authHandler.RegisterSessionRoutes(authed.Group("/auth"))

		schedules.NewHandler(db).RegisterRoutes(authed)
		availability.NewHandler(db).RegisterRoutes(authed)
		comments.NewHandler(db).RegisterRoutes(authed)
	}

	return r
}

// login reconciles a provider profile and returns a session header, standing
// in for the OIDC round-trip
func login(t *testing.T, db *gorm.DB, externalID, name string) string {
	user, err := identity.Reconcile(db, identity.Profile{ExternalID: externalID, DisplayName: name})
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}
	token, err := identity.GenerateToken(user.ExternalID, user.DisplayName)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}
	return "Bearer " + token
}

func doJSON(t *testing.T, r *gin.Engine, method, url, auth string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("Failed to encode body: %v", err)
		}
	}
	req, _ := http.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestFullSchedulingFlow(t *testing.T) {
	db := setupTestDB(t)
	server := setupFullServer(db)

	organizer := login(t, db, "gh-organizer", "Organizer")
	alice := login(t, db, "gh-alice", "Alice")
	bob := login(t, db, "gh-bob", "Bob")

	// Organizer creates the poll
	resp := doJSON(t, server, "POST", "/api/schedules", organizer, schedules.CreateScheduleRequest{
		Title:      "Team sync",
		Candidates: "Mon 10:00\nTue 14:00",
	})
	if resp.Code != http.StatusCreated {
		t.Fatalf("Create schedule: expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	var created schedules.ScheduleDetailResponse
	json.Unmarshal(resp.Body.Bytes(), &created)
	scheduleID := created.Schedule.ID
	monID := created.Candidates[0].ID
	tueID := created.Candidates[1].ID

	// Alice submits her whole row, Bob marks only Monday
	resp = doJSON(t, server, "POST", "/api/schedules/"+scheduleID+"/availability", alice,
		availability.SetManyRequest{Cells: map[string]string{
			fmt.Sprintf("%d", monID): "yes",
			fmt.Sprintf("%d", tueID): "no",
		}})
	if resp.Code != http.StatusOK {
		t.Fatalf("Alice's submission: expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	url := fmt.Sprintf("/api/schedules/%s/candidates/%d/availability", scheduleID, monID)
	resp = doJSON(t, server, "PUT", url, bob, availability.SetCellRequest{Status: "yes"})
	if resp.Code != http.StatusOK {
		t.Fatalf("Bob's mark: expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	// Bob leaves a comment too
	resp = doJSON(t, server, "PUT", "/api/schedules/"+scheduleID+"/comment", bob,
		comments.SetCommentRequest{Text: "Monday works best"})
	if resp.Code != http.StatusOK {
		t.Fatalf("Bob's comment: expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	// Anyone logged in can read the aggregated view
	resp = doJSON(t, server, "GET", "/api/schedules/"+scheduleID, alice, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("Get schedule: expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var detail schedules.ScheduleDetailResponse
	json.Unmarshal(resp.Body.Bytes(), &detail)

	mon, tue := detail.Summary.Candidates[0], detail.Summary.Candidates[1]
	if mon.Yes != 2 || mon.No != 0 || mon.Undecided != 0 {
		t.Errorf("Mon counts = %d/%d/%d, want 2/0/0", mon.Yes, mon.No, mon.Undecided)
	}
	if tue.Yes != 0 || tue.No != 1 || tue.Undecided != 1 {
		t.Errorf("Tue counts = %d/%d/%d, want 0/1/1", tue.Yes, tue.No, tue.Undecided)
	}
	if detail.Summary.Ranking[0].CandidateID != monID {
		t.Errorf("Expected Mon ranked first")
	}
	if len(detail.Summary.Participants) != 2 {
		t.Fatalf("Expected 2 participants, got %d", len(detail.Summary.Participants))
	}
	for _, row := range detail.Summary.Participants {
		if row.UserID == "gh-bob" && row.Comment != "Monday works best" {
			t.Errorf("Expected Bob's comment in his row, got %q", row.Comment)
		}
	}

	// A failed bulk submission must not change anything
	resp = doJSON(t, server, "POST", "/api/schedules/"+scheduleID+"/availability", bob,
		availability.SetManyRequest{Cells: map[string]string{
			fmt.Sprintf("%d", monID): "no",
			"99999":                  "yes",
		}})
	if resp.Code != http.StatusConflict {
		t.Fatalf("Invalid submission: expected 409, got %d", resp.Code)
	}
	resp = doJSON(t, server, "GET", "/api/schedules/"+scheduleID, bob, nil)
	json.Unmarshal(resp.Body.Bytes(), &detail)
	if detail.Summary.Candidates[0].Yes != 2 {
		t.Errorf("Rejected submission must leave prior cells unchanged")
	}

	// Only the organizer can delete; the cascade removes everything
	resp = doJSON(t, server, "DELETE", "/api/schedules/"+scheduleID, bob, nil)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("Stranger delete: expected 403, got %d", resp.Code)
	}
	resp = doJSON(t, server, "DELETE", "/api/schedules/"+scheduleID, organizer, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("Owner delete: expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var candidateCount, availabilityCount, commentCount, userCount int64
	db.Model(&models.Candidate{}).Count(&candidateCount)
	db.Model(&models.Availability{}).Count(&availabilityCount)
	db.Model(&models.Comment{}).Count(&commentCount)
	db.Model(&models.User{}).Count(&userCount)
	if candidateCount != 0 || availabilityCount != 0 || commentCount != 0 {
		t.Errorf("Cascade left rows behind: %d candidates, %d availabilities, %d comments",
			candidateCount, availabilityCount, commentCount)
	}
	if userCount != 3 {
		t.Errorf("Users must survive schedule deletion, got %d", userCount)
	}
}

func TestDashboardOrdering(t *testing.T) {
	db := setupTestDB(t)
	server := setupFullServer(db)

	organizer := login(t, db, "gh-organizer", "Organizer")
	voter := login(t, db, "gh-voter", "Voter")

	var ids []string
	for _, title := range []string{"First", "Second"} {
		resp := doJSON(t, server, "POST", "/api/schedules", organizer, schedules.CreateScheduleRequest{
			Title:      title,
			Candidates: "Mon",
		})
		var created schedules.ScheduleDetailResponse
		json.Unmarshal(resp.Body.Bytes(), &created)
		ids = append(ids, created.Schedule.ID)
	}

	// Age both schedules, then have a vote land on the first
	db.Model(&models.Schedule{}).Where("id IN ?", ids).
		Update("updated_at", time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	var cand models.Candidate
	db.First(&cand, "schedule_id = ?", ids[0])
	url := fmt.Sprintf("/api/schedules/%s/candidates/%d/availability", ids[0], cand.ID)
	resp := doJSON(t, server, "PUT", url, voter, availability.SetCellRequest{Status: "yes"})
	if resp.Code != http.StatusOK {
		t.Fatalf("Vote: expected 200, got %d", resp.Code)
	}

	// The voted-on schedule now leads the dashboard
	resp = doJSON(t, server, "GET", "/api/schedules", organizer, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("List: expected 200, got %d", resp.Code)
	}
	var list []schedules.ScheduleResponse
	json.Unmarshal(resp.Body.Bytes(), &list)
	if len(list) != 2 {
		t.Fatalf("Expected 2 schedules, got %d", len(list))
	}
	if list[0].ID != ids[0] {
		t.Errorf("Expected the recently active schedule first, got %s", list[0].Title)
	}
}

func TestUnauthenticatedRequestsRejected(t *testing.T) {
	db := setupTestDB(t)
	server := setupFullServer(db)

	resp := doJSON(t, server, "GET", "/api/schedules", "", nil)
	if resp.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 without a session, got %d", resp.Code)
	}

	resp = doJSON(t, server, "GET", "/health", "", nil)
	if resp.Code != http.StatusOK {
		t.Errorf("Health check should be public, got %d", resp.Code)
	}
}
