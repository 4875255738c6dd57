package model_test

import (
	"errors"
	"testing"

	model "github.com/okian/lineup/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestDecodePlayers(t *testing.T) {
	convey.Convey("Given JSON player records", t, func() {
		convey.Convey("When every field is present", func() {
			players, err := model.DecodePlayers([]byte(`[
				{"name":"Josh Allen","position":"QB","team":"BUF","projected_points":23.8,"last_3_avg":22.1,"opponent_def_rank":15}
			]`))

			convey.Convey("Then the record should be decoded as given", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(players, convey.ShouldResemble, []model.Player{{
					Name: "Josh Allen", Position: "QB", Team: "BUF",
					ProjectedPoints: 23.8, Last3Avg: 22.1, OpponentDefRank: 15,
				}})
			})
		})

		convey.Convey("When optional numeric fields are missing", func() {
			players, err := model.DecodePlayers([]byte(`[{"name":"Rookie"}]`))

			convey.Convey("Then points should be zero and the rank should be the median", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(players[0].ProjectedPoints, convey.ShouldEqual, 0)
				convey.So(players[0].Last3Avg, convey.ShouldEqual, 0)
				convey.So(players[0].OpponentDefRank, convey.ShouldEqual, model.DefaultOpponentDefRank)
			})
		})

		convey.Convey("When a record has no name", func() {
			_, err := model.DecodePlayers([]byte(`[{"name":"A"},{"position":"QB"}]`))

			convey.Convey("Then decoding should fail with the record index", func() {
				convey.So(errors.Is(err, model.ErrInvalidRecord), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "record 1")
			})
		})

		convey.Convey("When the input is not JSON", func() {
			_, err := model.DecodePlayers([]byte(`{not json`))

			convey.Convey("Then decoding should fail", func() {
				convey.So(errors.Is(err, model.ErrInvalidRecord), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the input is empty", func() {
			players, err := model.DecodePlayers([]byte("  \n"))

			convey.Convey("Then an empty snapshot should be returned", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(players, convey.ShouldNotBeNil)
				convey.So(players, convey.ShouldBeEmpty)
			})
		})
	})
}

func TestPlayer_InRange(t *testing.T) {
	convey.Convey("Given players with various opponent ranks", t, func() {
		convey.So(model.Player{OpponentDefRank: 1}.InRange(32), convey.ShouldBeTrue)
		convey.So(model.Player{OpponentDefRank: 32}.InRange(32), convey.ShouldBeTrue)
		convey.So(model.Player{OpponentDefRank: 0}.InRange(32), convey.ShouldBeFalse)
		convey.So(model.Player{OpponentDefRank: 33}.InRange(32), convey.ShouldBeFalse)
	})
}

func TestSamplePlayers(t *testing.T) {
	convey.Convey("Given the built-in sample", t, func() {
		first := model.SamplePlayers()

		convey.Convey("Then it should hold eight unique players", func() {
			convey.So(len(first), convey.ShouldEqual, 8)
			seen := map[string]bool{}
			for _, p := range first {
				convey.So(seen[p.Name], convey.ShouldBeFalse)
				seen[p.Name] = true
			}
		})

		convey.Convey("Then callers should not share the backing array", func() {
			first[0].Name = "changed"
			convey.So(model.SamplePlayers()[0].Name, convey.ShouldEqual, "Patrick Mahomes")
		})
	})
}
