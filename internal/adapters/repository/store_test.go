package repository_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/okian/lineup/internal/adapters/repository"
	"github.com/okian/lineup/internal/domain/model"
	"github.com/okian/lineup/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

type stubSource struct {
	players []model.Player
	err     error
}

func (s stubSource) Load(context.Context) ([]model.Player, error) { return s.players, s.err }
func (s stubSource) Name() string { return "stub" }

func TestMemoryStore(t *testing.T) {
	Convey("Given an empty memory store", t, func() {
		ctx := context.Background()
		fixed := time.Date(2025, 9, 7, 12, 0, 0, 0, time.UTC)
		store := repository.NewMemoryStore(repository.WithClock(func() time.Time { return fixed }))

		Convey("Then it should serve an empty non-nil snapshot", func() {
			So(store.All(ctx), ShouldNotBeNil)
			So(store.Count(ctx), ShouldEqual, 0)
			So(store.Reloads(), ShouldEqual, 0)
		})

		Convey("When reloading from the builtin source", func() {
			n, err := store.Reload(ctx, repository.NewBuiltinSource())

			Convey("Then the sample players should be active", func() {
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 8)
				So(store.Count(ctx), ShouldEqual, 8)
				So(store.All(ctx)[0].Name, ShouldEqual, "Patrick Mahomes")
				So(store.Current().Source, ShouldEqual, "builtin")
				So(store.Current().LoadedAt, ShouldEqual, fixed)
				So(store.Reloads(), ShouldEqual, 1)
			})
		})

		Convey("When the source fails", func() {
			_, _ = store.Reload(ctx, repository.NewBuiltinSource())
			_, err := store.Reload(ctx, stubSource{err: errors.New("unreachable")})

			Convey("Then the previous snapshot should stay active", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "load stub")
				So(store.Count(ctx), ShouldEqual, 8)
			})
		})

		Convey("When reloading with a nil source", func() {
			_, err := store.Reload(ctx, nil)

			Convey("Then it should fail", func() {
				So(errors.Is(err, repository.ErrNilSource), ShouldBeTrue)
			})
		})

		Convey("When a caller mutates the slice it replaced", func() {
			players := model.SamplePlayers()
			So(store.Replace(ctx, "test", players), ShouldBeNil)
			players[0].Name = "changed"

			Convey("Then the snapshot should be unaffected", func() {
				So(store.All(ctx)[0].Name, ShouldEqual, "Patrick Mahomes")
			})
		})

		Convey("When a reader holds the old snapshot across a reload", func() {
			So(store.Replace(ctx, "a", []model.Player{{Name: "A"}}), ShouldBeNil)
			held := store.All(ctx)
			So(store.Replace(ctx, "b", []model.Player{{Name: "B"}, {Name: "C"}}), ShouldBeNil)

			Convey("Then the held snapshot should be unchanged", func() {
				So(len(held), ShouldEqual, 1)
				So(held[0].Name, ShouldEqual, "A")
				So(store.Count(ctx), ShouldEqual, 2)
			})
		})
	})

	Convey("Given a store with the reject policy", t, func() {
		ctx := context.Background()
		store := repository.NewMemoryStore(
			repository.WithRankPolicy(scoring.PolicyReject),
			repository.WithLeagueSize(32),
		)
		So(store.Replace(ctx, "seed", model.SamplePlayers()), ShouldBeNil)

		Convey("When a record has a rank outside the league", func() {
			_, err := store.Reload(ctx, stubSource{players: []model.Player{{Name: "X", OpponentDefRank: 40}}})

			Convey("Then the snapshot should be rejected", func() {
				So(errors.Is(err, repository.ErrRankOutOfRange), ShouldBeTrue)
				So(store.Count(ctx), ShouldEqual, 8)
			})
		})

		Convey("When every rank is in range", func() {
			n, err := store.Reload(ctx, stubSource{players: []model.Player{{Name: "X", OpponentDefRank: 32}}})

			Convey("Then it should be published", func() {
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 1)
			})
		})
	})

	Convey("Given the accept policy", t, func() {
		ctx := context.Background()
		store := repository.NewMemoryStore()

		Convey("Then out-of-range ranks should be kept as given", func() {
			So(store.Replace(ctx, "x", []model.Player{{Name: "X", OpponentDefRank: 0}}), ShouldBeNil)
			So(store.All(ctx)[0].OpponentDefRank, ShouldEqual, 0)
		})
	})
}

func TestMemoryStore_Concurrent(t *testing.T) {
	Convey("Given readers racing a reloader", t, func() {
		ctx := context.Background()
		store := repository.NewMemoryStore()
		So(store.Replace(ctx, "seed", model.SamplePlayers()), ShouldBeNil)

		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(2)
			go func() {
				defer wg.Done()
				for j := 0; j < 100; j++ {
					snap := store.All(ctx)
					if len(snap) != 8 && len(snap) != 2 {
						panic("torn snapshot")
					}
				}
			}()
			go func() {
				defer wg.Done()
				_ = store.Replace(ctx, "swap", []model.Player{{Name: "A"}, {Name: "B"}})
			}()
		}

		Convey("Then every read should see a whole snapshot", func() {
			So(func() { wg.Wait() }, ShouldNotPanic)
		})
	})
}
