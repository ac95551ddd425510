package service

import (
	"context"
	"errors"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/podium/internal/adapters/repository"
	"github.com/okian/podium/internal/domain/model"
	"github.com/okian/podium/internal/domain/types"
	"github.com/okian/podium/pkg/logger"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

// fixedNow pins the weekly time-frame default for deterministic keys.
// 2026-08-30 is a Sunday in ISO week 2026-W35.
var fixedNow = time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

func newStarted(t *testing.T) *Service {
	t.Helper()
	s := New(
		WithWorkerCount(2),
		WithQueueSize(64),
		WithDedupeSize(16),
		WithClock(func() time.Time { return fixedNow }),
	)
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	t.Cleanup(s.Stop)
	return s
}

func submit(s *Service, game, frame, player string, score int64) (bool, error) {
	res, err := s.SubmitScore(context.Background(), model.Submission{
		GameID:    game,
		TimeFrame: frame,
		PlayerID:  player,
		Score:     score,
	})
	return res.Accepted, err
}

func TestSubmitScore(t *testing.T) {
	Convey("Given a started service", t, func() {
		s := newStarted(t)
		ctx := context.Background()

		Convey("A first submission is accepted with no previous score", func() {
			res, err := s.SubmitScore(ctx, model.Submission{
				GameID: "chess", TimeFrame: "alltime", PlayerID: "alice", Score: 100,
			})
			So(err, ShouldBeNil)
			So(res.Accepted, ShouldBeTrue)
			So(res.PreviousScore, ShouldBeNil)
		})

		Convey("Only a strictly greater score replaces the stored one", func() {
			_, err := submit(s, "chess", "alltime", "alice", 100)
			So(err, ShouldBeNil)

			res, err := s.SubmitScore(ctx, model.Submission{
				GameID: "chess", TimeFrame: "alltime", PlayerID: "alice", Score: 90,
			})
			So(err, ShouldBeNil)
			So(res.Accepted, ShouldBeFalse)
			So(*res.PreviousScore, ShouldEqual, 100)

			res, err = s.SubmitScore(ctx, model.Submission{
				GameID: "chess", TimeFrame: "alltime", PlayerID: "alice", Score: 100,
			})
			So(err, ShouldBeNil)
			So(res.Accepted, ShouldBeFalse)

			res, err = s.SubmitScore(ctx, model.Submission{
				GameID: "chess", TimeFrame: "alltime", PlayerID: "alice", Score: 150,
			})
			So(err, ShouldBeNil)
			So(res.Accepted, ShouldBeTrue)
			So(*res.PreviousScore, ShouldEqual, 100)
		})

		Convey("An empty time frame defaults to the current ISO week", func() {
			_, err := submit(s, "chess", "", "alice", 100)
			So(err, ShouldBeNil)

			r, err := s.Rank(ctx, "chess", "2026-W35", "alice")
			So(err, ShouldBeNil)
			So(r.Score, ShouldEqual, 100)
			So(r.TimeFrame, ShouldEqual, "2026-W35")
		})

		Convey("Partitions are independent across games and time frames", func() {
			_, err := submit(s, "chess", "alltime", "alice", 100)
			So(err, ShouldBeNil)
			_, err = submit(s, "chess", "2026-08", "alice", 40)
			So(err, ShouldBeNil)
			_, err = submit(s, "go", "alltime", "alice", 7)
			So(err, ShouldBeNil)

			r, err := s.Rank(ctx, "chess", "2026-08", "alice")
			So(err, ShouldBeNil)
			So(r.Score, ShouldEqual, 40)
		})

		Convey("An empty game ID is rejected", func() {
			_, err := submit(s, "", "alltime", "alice", 100)
			So(errors.Is(err, model.ErrEmptyGameID), ShouldBeTrue)
		})

		Convey("A malformed time frame is rejected", func() {
			_, err := submit(s, "chess", "last-tuesday", "alice", 100)
			So(errors.Is(err, model.ErrInvalidTimeFrame), ShouldBeTrue)
		})
	})
}

func TestRank(t *testing.T) {
	Convey("Given a partition with tied scores", t, func() {
		s := newStarted(t)
		ctx := context.Background()

		// alice 100, bob 90, carol 90, dave 80
		for _, p := range []struct {
			id    string
			score int64
		}{{"alice", 100}, {"bob", 90}, {"carol", 90}, {"dave", 80}} {
			_, err := submit(s, "chess", "alltime", p.id, p.score)
			So(err, ShouldBeNil)
		}

		Convey("Tied players share a rank and the next rank skips them", func() {
			r, err := s.Rank(ctx, "chess", "alltime", "bob")
			So(err, ShouldBeNil)
			So(r.Rank, ShouldEqual, 2)

			r, err = s.Rank(ctx, "chess", "alltime", "carol")
			So(err, ShouldBeNil)
			So(r.Rank, ShouldEqual, 2)

			r, err = s.Rank(ctx, "chess", "alltime", "dave")
			So(err, ShouldBeNil)
			So(r.Rank, ShouldEqual, 4)
		})

		Convey("Percentile and band derive from rank and total", func() {
			r, err := s.Rank(ctx, "chess", "alltime", "alice")
			So(err, ShouldBeNil)
			So(r.Rank, ShouldEqual, 1)
			So(r.TotalPlayers, ShouldEqual, 4)
			So(r.Percentile, ShouldEqual, 100)
			So(r.Band, ShouldEqual, "Top 1%")

			r, err = s.Rank(ctx, "chess", "alltime", "dave")
			So(err, ShouldBeNil)
			So(r.Percentile, ShouldEqual, 25)
			So(r.Band, ShouldEqual, "Bottom 75%")
		})

		Convey("A sole player ranks first at the 100th percentile", func() {
			_, err := submit(s, "solo", "alltime", "zed", 1)
			So(err, ShouldBeNil)

			r, err := s.Rank(ctx, "solo", "alltime", "zed")
			So(err, ShouldBeNil)
			So(r.Rank, ShouldEqual, 1)
			So(r.TotalPlayers, ShouldEqual, 1)
			So(r.Percentile, ShouldEqual, 100)
		})

		Convey("Unknown players and partitions yield NotFound", func() {
			_, err := s.Rank(ctx, "chess", "alltime", "nobody")
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)

			_, err = s.Rank(ctx, "checkers", "alltime", "alice")
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
		})
	})
}

func TestTopPlayers(t *testing.T) {
	Convey("Given a populated partition", t, func() {
		s := newStarted(t)
		ctx := context.Background()

		for _, p := range []struct {
			id    string
			score int64
		}{{"alice", 100}, {"bob", 90}, {"carol", 90}, {"dave", 80}, {"erin", 70}} {
			_, err := submit(s, "chess", "alltime", p.id, p.score)
			So(err, ShouldBeNil)
		}

		Convey("Entries come back best first with positional ranks", func() {
			page, err := s.TopPlayers(ctx, "chess", "alltime", 3)
			So(err, ShouldBeNil)
			So(page.TotalPlayers, ShouldEqual, 5)
			So(len(page.Entries), ShouldEqual, 3)
			So(page.Entries[0].PlayerID, ShouldEqual, "alice")
			So(page.Entries[0].Rank, ShouldEqual, 1)
			So(page.Entries[1].PlayerID, ShouldEqual, "bob")
			So(page.Entries[1].Rank, ShouldEqual, 2)
			So(page.Entries[2].PlayerID, ShouldEqual, "carol")
			So(page.Entries[2].Rank, ShouldEqual, 3)
		})

		Convey("Asking for more than the partition holds returns everyone", func() {
			page, err := s.TopPlayers(ctx, "chess", "alltime", 50)
			So(err, ShouldBeNil)
			So(len(page.Entries), ShouldEqual, 5)
			So(page.Entries[4].PlayerID, ShouldEqual, "erin")
		})

		Convey("An unknown partition returns an empty page, not an error", func() {
			page, err := s.TopPlayers(ctx, "checkers", "alltime", 10)
			So(err, ShouldBeNil)
			So(page.TotalPlayers, ShouldEqual, 0)
			So(page.Entries, ShouldBeEmpty)
		})

		Convey("A non-positive count is rejected", func() {
			_, err := s.TopPlayers(ctx, "chess", "alltime", 0)
			So(errors.Is(err, repository.ErrInvalidLimit), ShouldBeTrue)
		})
	})
}

func TestContextWindow(t *testing.T) {
	Convey("Given a populated partition", t, func() {
		s := newStarted(t)
		ctx := context.Background()

		for _, p := range []struct {
			id    string
			score int64
		}{{"alice", 100}, {"bob", 90}, {"carol", 80}, {"dave", 70}, {"erin", 60}} {
			_, err := submit(s, "chess", "alltime", p.id, p.score)
			So(err, ShouldBeNil)
		}

		Convey("A middle player sees neighbors on both sides", func() {
			w, err := s.ContextWindow(ctx, "chess", "alltime", "carol", 1)
			So(err, ShouldBeNil)
			So(w.Player.PlayerID, ShouldEqual, "carol")
			So(w.Player.Rank, ShouldEqual, 3)
			So(len(w.Above), ShouldEqual, 1)
			So(w.Above[0].PlayerID, ShouldEqual, "bob")
			So(w.Above[0].Rank, ShouldEqual, 2)
			So(len(w.Below), ShouldEqual, 1)
			So(w.Below[0].PlayerID, ShouldEqual, "dave")
			So(w.Below[0].Rank, ShouldEqual, 4)
		})

		Convey("The top player has an empty above side", func() {
			w, err := s.ContextWindow(ctx, "chess", "alltime", "alice", 2)
			So(err, ShouldBeNil)
			So(w.Above, ShouldBeEmpty)
			So(len(w.Below), ShouldEqual, 2)
			So(w.Below[0].PlayerID, ShouldEqual, "bob")
		})

		Convey("The bottom player has an empty below side", func() {
			w, err := s.ContextWindow(ctx, "chess", "alltime", "erin", 2)
			So(err, ShouldBeNil)
			So(w.Below, ShouldBeEmpty)
			So(len(w.Above), ShouldEqual, 2)
			So(w.Above[0].PlayerID, ShouldEqual, "carol")
			So(w.Above[1].PlayerID, ShouldEqual, "dave")
		})

		Convey("A zero context size returns just the player", func() {
			w, err := s.ContextWindow(ctx, "chess", "alltime", "carol", 0)
			So(err, ShouldBeNil)
			So(w.Above, ShouldBeEmpty)
			So(w.Below, ShouldBeEmpty)
		})

		Convey("Neighbor ranks above a tied target never drop below one", func() {
			// frank ties alice at 100 and orders after her by ID, so frank's
			// window enumerates alice above him while both hold rank 1.
			_, err := submit(s, "chess", "alltime", "frank", 100)
			So(err, ShouldBeNil)

			w, err := s.ContextWindow(ctx, "chess", "alltime", "frank", 1)
			So(err, ShouldBeNil)
			So(w.Player.Rank, ShouldEqual, 1)
			So(len(w.Above), ShouldEqual, 1)
			So(w.Above[0].PlayerID, ShouldEqual, "alice")
			So(w.Above[0].Rank, ShouldEqual, 1)
		})

		Convey("An unknown player yields NotFound", func() {
			_, err := s.ContextWindow(ctx, "chess", "alltime", "nobody", 2)
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
		})
	})
}

func TestCrossLeaderboardReport(t *testing.T) {
	Convey("Given a player present in several partitions", t, func() {
		s := newStarted(t)
		ctx := context.Background()

		seed := []struct {
			game, frame, player string
			score               int64
		}{
			{"chess", "alltime", "alice", 100},
			{"chess", "2026-08", "alice", 60},
			{"go", "alltime", "alice", 7},
			{"chess", "alltime", "bob", 120},
		}
		for _, sub := range seed {
			_, err := submit(s, sub.game, sub.frame, sub.player, sub.score)
			So(err, ShouldBeNil)
		}

		Convey("The full report covers every membership", func() {
			rep, err := s.CrossLeaderboardReport(ctx, "alice", types.ReportOptions{})
			So(err, ShouldBeNil)
			So(rep.PlayerID, ShouldEqual, "alice")
			So(len(rep.Entries), ShouldEqual, 3)
			// Entries are sorted by game then time frame.
			So(rep.Entries[0].GameID, ShouldEqual, "chess")
			So(rep.Entries[0].TimeFrame, ShouldEqual, "2026-08")
			So(rep.Entries[1].TimeFrame, ShouldEqual, "alltime")
			So(rep.Entries[1].Rank, ShouldEqual, 2)
			So(rep.Entries[2].GameID, ShouldEqual, "go")
		})

		Convey("A game filter narrows the report", func() {
			rep, err := s.CrossLeaderboardReport(ctx, "alice", types.ReportOptions{GameID: "go"})
			So(err, ShouldBeNil)
			So(len(rep.Entries), ShouldEqual, 1)
			So(rep.Entries[0].GameID, ShouldEqual, "go")
		})

		Convey("A time-frame filter is canonicalized before matching", func() {
			_, err := submit(s, "chess", "", "alice", 5)
			So(err, ShouldBeNil)

			rep, err := s.CrossLeaderboardReport(ctx, "alice", types.ReportOptions{TimeFrame: ""})
			So(err, ShouldBeNil)
			So(len(rep.Entries), ShouldEqual, 4)

			rep, err = s.CrossLeaderboardReport(ctx, "alice", types.ReportOptions{TimeFrame: "2026-W35"})
			So(err, ShouldBeNil)
			So(len(rep.Entries), ShouldEqual, 1)
			So(rep.Entries[0].TimeFrame, ShouldEqual, "2026-W35")
		})

		Convey("Grouping by game buckets the entries", func() {
			rep, err := s.CrossLeaderboardReport(ctx, "alice", types.ReportOptions{GroupByGame: true})
			So(err, ShouldBeNil)
			So(rep.Entries, ShouldBeEmpty)
			So(len(rep.Groups), ShouldEqual, 2)
			So(len(rep.Groups["chess"]), ShouldEqual, 2)
			So(len(rep.Groups["go"]), ShouldEqual, 1)
		})

		Convey("Best-per-game keeps only the highest score per game", func() {
			rep, err := s.CrossLeaderboardReport(ctx, "alice", types.ReportOptions{BestPerGame: true})
			So(err, ShouldBeNil)
			So(len(rep.Entries), ShouldEqual, 2)
			So(rep.Entries[0].GameID, ShouldEqual, "chess")
			So(rep.Entries[0].Score, ShouldEqual, 100)
			So(rep.Entries[1].GameID, ShouldEqual, "go")
		})

		Convey("A player with no submissions anywhere yields NotFound", func() {
			_, err := s.CrossLeaderboardReport(ctx, "nobody", types.ReportOptions{})
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
		})
	})
}

func TestDedupe(t *testing.T) {
	Convey("Given a started service", t, func() {
		s := newStarted(t)
		ctx := context.Background()

		Convey("The first sighting of an ID records it, repeats are seen", func() {
			So(s.SeenAndRecord(ctx, "sub-1"), ShouldBeFalse)
			So(s.SeenAndRecord(ctx, "sub-1"), ShouldBeTrue)
			So(s.Size(), ShouldEqual, 1)
		})

		Convey("Unrecord allows the ID to be submitted again", func() {
			So(s.SeenAndRecord(ctx, "sub-1"), ShouldBeFalse)
			s.Unrecord(ctx, "sub-1")
			So(s.SeenAndRecord(ctx, "sub-1"), ShouldBeFalse)
		})
	})
}

func TestLifecycle(t *testing.T) {
	Convey("Given a service", t, func() {
		s := New(WithWorkerCount(1), WithQueueSize(8))

		Convey("Start and Stop are idempotent", func() {
			So(s.Start(context.Background()), ShouldBeNil)
			So(s.Start(context.Background()), ShouldBeNil)
			s.Stop()
			s.Stop()
		})

		Convey("Stats reflect the running state", func() {
			So(s.Start(context.Background()), ShouldBeNil)
			defer s.Stop()

			_, err := submit(s, "chess", "alltime", "alice", 1)
			So(err, ShouldBeNil)

			stats := s.GetStats()
			So(stats["started"], ShouldBeTrue)
			So(stats["partitions"], ShouldEqual, 1)
			So(stats["totalPlayers"], ShouldEqual, 1)
		})
	})
}
