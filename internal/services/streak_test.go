package services

import (
	"testing"
	"time"
)

func TestNextStreak(t *testing.T) {
	day := func(offset int) *time.Time {
		d := time.Date(2025, 6, 10, 14, 30, 0, 0, time.UTC).AddDate(0, 0, offset)
		return &d
	}
	now := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)

	cases := []struct {
		name        string
		current     int
		longest     int
		last        *time.Time
		wantCurrent int
		wantLongest int
		wantChanged bool
	}{
		{"first ever", 0, 0, nil, 1, 1, true},
		{"same day repeat", 3, 5, day(0), 3, 5, false},
		{"consecutive day", 3, 5, day(-1), 4, 5, true},
		{"consecutive day new record", 5, 5, day(-1), 6, 6, true},
		{"two day gap resets", 6, 9, day(-2), 1, 9, true},
		{"long gap resets", 20, 20, day(-40), 1, 20, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			current, longest, changed := nextStreak(tc.current, tc.longest, tc.last, now)
			if changed != tc.wantChanged {
				t.Fatalf("changed = %v, want %v", changed, tc.wantChanged)
			}
			if current != tc.wantCurrent || longest != tc.wantLongest {
				t.Fatalf("got (%d, %d), want (%d, %d)", current, longest, tc.wantCurrent, tc.wantLongest)
			}
		})
	}
}

func TestStreakTouchLifecycle(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "free")
	dbc := authedCtx(user.ID)

	day1 := time.Date(2025, 6, 10, 8, 0, 0, 0, time.UTC)

	row, changed, err := env.streakSvc.Touch(dbc, user.ID, day1)
	if err != nil {
		t.Fatalf("first touch: %v", err)
	}
	if !changed || row.CurrentStreak != 1 || row.LongestStreak != 1 {
		t.Fatalf("first touch: changed=%v streak=%+v", changed, row)
	}

	// Same day again is a no-op.
	row, changed, err = env.streakSvc.Touch(dbc, user.ID, day1.Add(5*time.Hour))
	if err != nil {
		t.Fatalf("same-day touch: %v", err)
	}
	if changed || row.CurrentStreak != 1 {
		t.Fatalf("same-day touch should not change: changed=%v streak=%+v", changed, row)
	}

	row, changed, err = env.streakSvc.Touch(dbc, user.ID, day1.AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("next-day touch: %v", err)
	}
	if !changed || row.CurrentStreak != 2 || row.LongestStreak != 2 {
		t.Fatalf("next-day touch: changed=%v streak=%+v", changed, row)
	}

	row, _, err = env.streakSvc.Touch(dbc, user.ID, day1.AddDate(0, 0, 5))
	if err != nil {
		t.Fatalf("gap touch: %v", err)
	}
	if row.CurrentStreak != 1 || row.LongestStreak != 2 {
		t.Fatalf("gap touch should reset current and keep longest: %+v", row)
	}
}
