package domain

import (
	"encoding/json"
	"testing"
	"time"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 15, 0, 0, 0, time.UTC)
}

func TestUpdateDailyStreak(t *testing.T) {
	p := NewUserProfile("u1", day(2025, time.March, 1))

	p.UpdateDailyStreak(day(2025, time.March, 1))
	if p.CurrentStreak != 1 || p.LongestStreak != 1 {
		t.Fatalf("first completion: %+v", p)
	}

	p.UpdateDailyStreak(day(2025, time.March, 2))
	if p.CurrentStreak != 2 {
		t.Fatalf("consecutive day should extend: %+v", p)
	}

	p.UpdateDailyStreak(day(2025, time.March, 5))
	if p.CurrentStreak != 1 {
		t.Fatalf("gap should restart: %+v", p)
	}
	if p.LongestStreak != 2 {
		t.Fatalf("longest streak lost: %+v", p)
	}
}

func TestAccuracy(t *testing.T) {
	p := NewUserProfile("u1", time.Now())
	if p.Accuracy() != 0 {
		t.Fatalf("fresh profile accuracy should be 0, got %f", p.Accuracy())
	}
	p.QuestionsAnswered = 8
	p.CorrectAnswers = 6
	if p.Accuracy() != 75 {
		t.Fatalf("expected 75, got %f", p.Accuracy())
	}
}

func TestTierOrdering(t *testing.T) {
	if !TierTitanium.Outranks(TierWood) {
		t.Fatal("Titanium must outrank Wood")
	}
	if TierWood.Outranks(TierStone) {
		t.Fatal("Wood must not outrank Stone")
	}
	if Tier("Obsidian").Valid() {
		t.Fatal("unknown tier must not validate")
	}
	if len(Tiers) != 9 {
		t.Fatalf("expected 9 tiers, got %d", len(Tiers))
	}
}

func TestParsePowerup(t *testing.T) {
	p, err := ParsePowerup("freeze_frame")
	if err != nil || p != PowerupFreezeFrame {
		t.Fatalf("parse failed: %v %v", p, err)
	}
	if _, err := ParsePowerup("time_travel"); err == nil {
		t.Fatal("expected error for unknown powerup")
	}
}

func TestEnsureInventoryOnLegacyDocument(t *testing.T) {
	var p UserProfile
	if err := json.Unmarshal([]byte(`{"user_id":"u1","total_points":40}`), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if p.Powerups != nil {
		t.Fatal("document without powerups should unmarshal to a nil map")
	}
	p.EnsureInventory()
	if p.Powerups == nil {
		t.Fatal("inventory not initialized")
	}
	p.Powerups[PowerupFreezeFrame]++
	if p.Powerups.Total() != 1 {
		t.Fatalf("expected 1 powerup, got %d", p.Powerups.Total())
	}
}

func TestQuestionCorrectLabel(t *testing.T) {
	q := Question{Options: []Option{
		{Label: "A", Text: "no"},
		{Label: "B", Text: "yes", Correct: true},
	}}
	if q.CorrectLabel() != "B" {
		t.Fatalf("expected B, got %q", q.CorrectLabel())
	}
}
