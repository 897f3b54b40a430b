package daily

import (
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/robalobadob/noterecall/assets"
	"github.com/robalobadob/noterecall/internal/database"
)

func TestDateKey(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*3600)
	if got := DateKey(time.Date(2026, 5, 2, 3, 0, 0, 0, loc)); got != "2026-05-01" {
		t.Errorf("expected UTC date 2026-05-01, got %s", got)
	}
}

func TestRandIsStablePerDayAndNote(t *testing.T) {
	day := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	later := day.Add(10 * time.Hour)

	draw := func(d time.Time, owner, path string) [4]int {
		r := Rand(d, "salt", owner, path)
		return [4]int{r.IntN(1000), r.IntN(1000), r.IntN(1000), r.IntN(1000)}
	}

	if draw(day, "u1", "a.md") != draw(later, "u1", "a.md") {
		t.Error("same day, owner and note must give the same sequence")
	}
	if draw(day, "u1", "a.md") == draw(day.AddDate(0, 0, 1), "u1", "a.md") {
		t.Error("next day should differ")
	}
	if draw(day, "u1", "a.md") == draw(day, "u2", "a.md") {
		t.Error("different owners should differ")
	}
	if draw(day, "u1", "a.md") == draw(day, "u1", "b.md") {
		t.Error("different notes should differ")
	}
}

func TestStore(t *testing.T) {
	ctx := context.Background()
	db, err := database.Open(filepath.Join(t.TempDir(), "app.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	if err := database.Migrate(db, assets.Migrations()); err != nil {
		t.Fatal(err)
	}
	s := NewStore(db)

	played, err := s.AlreadyPlayed(ctx, "u1", "2026-05-01")
	if err != nil || played {
		t.Fatalf("expected not played, got %v (%v)", played, err)
	}
	results := []Result{
		{UserID: "u1", Date: "2026-05-01", SourcePath: "a.md", Score: 70, Questions: 4},
		{UserID: "u2", Date: "2026-05-01", SourcePath: "b.md", Score: 90, Questions: 2},
		{UserID: "u3", Date: "2026-05-01", SourcePath: "c.md", Score: 70, Questions: 8},
		{UserID: "u1", Date: "2026-05-01", SourcePath: "a.md", Score: 100, Questions: 4}, // ignored
		{UserID: "u1", Date: "2026-05-02", SourcePath: "a.md", Score: 10, Questions: 4},
	}
	for _, r := range results {
		if err := s.InsertResult(ctx, r); err != nil {
			t.Fatal(err)
		}
	}
	if played, _ := s.AlreadyPlayed(ctx, "u1", "2026-05-01"); !played {
		t.Error("expected played")
	}

	for id, name := range map[string]string{"u1": "alice", "u2": "bob"} {
		if _, err := db.Exec(`INSERT INTO users (id, username, password_hash, created_at) VALUES (?,?,?,?)`,
			id, name, "x", "2026-05-01T00:00:00Z"); err != nil {
			t.Fatal(err)
		}
	}

	lb, err := s.Leaderboard(ctx, "2026-05-01", 0)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"bob", GuestName, "alice"}
	if len(lb) != len(want) {
		t.Fatalf("expected %d rows, got %+v", len(want), lb)
	}
	for i, name := range want {
		if lb[i].Player != name {
			t.Errorf("rank %d: expected %s, got %s", i, name, lb[i].Player)
		}
	}
	if lb[2].Score != 70 {
		t.Errorf("duplicate insert must be ignored, got score %d", lb[2].Score)
	}
	b, err := json.Marshal(lb)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(b), "u3") {
		t.Errorf("owner ids must not be serialized: %s", b)
	}
}

func TestClaim(t *testing.T) {
	ctx := context.Background()
	db, err := database.Open(filepath.Join(t.TempDir(), "app.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	if err := database.Migrate(db, assets.Migrations()); err != nil {
		t.Fatal(err)
	}
	s := NewStore(db)

	for _, r := range []Result{
		{UserID: "guest1", Date: "2026-05-01", SourcePath: "a.md", Score: 40, Questions: 4},
		{UserID: "guest1", Date: "2026-05-02", SourcePath: "a.md", Score: 60, Questions: 4},
		{UserID: "acct", Date: "2026-05-02", SourcePath: "b.md", Score: 90, Questions: 4},
	} {
		if err := s.InsertResult(ctx, r); err != nil {
			t.Fatal(err)
		}
	}
	if err := s.Claim(ctx, "guest1", "acct"); err != nil {
		t.Fatal(err)
	}
	if played, _ := s.AlreadyPlayed(ctx, "acct", "2026-05-01"); !played {
		t.Error("guest result should move to the account")
	}
	lb, _ := s.Leaderboard(ctx, "2026-05-02", 0)
	if len(lb) != 1 || lb[0].Score != 90 || lb[0].UserID != "acct" {
		t.Errorf("account's own result must win a clash: %+v", lb)
	}
}
