package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/okian/podium/internal/adapters/http/api"
	"github.com/okian/podium/internal/adapters/http/swagger"
	app "github.com/okian/podium/internal/app"
	"github.com/okian/podium/internal/config"
	"github.com/okian/podium/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func TestConfigLoading(t *testing.T) {
	convey.Convey("Given the main application", t, func() {
		convey.Convey("When loading configuration from the environment", func() {
			t.Setenv("PODIUM_ADDR", ":8080")
			t.Setenv("PODIUM_QUEUE_SIZE", "1000")
			t.Setenv("PODIUM_WORKER_COUNT", "4")

			ctx := context.Background()
			cfg, err := config.Load(ctx)

			convey.Convey("Then configuration should be loadable", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 1000)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 4)
			})
		})
	})
}

func TestWiring(t *testing.T) {
	convey.Convey("Given a started service behind the full route set", t, func() {
		ctx := context.Background()

		svc := app.New(app.WithWorkerCount(1), app.WithQueueSize(64))
		convey.So(svc.Start(ctx), convey.ShouldBeNil)
		defer svc.Stop()

		mux := http.NewServeMux()
		swagger.Register(ctx, mux)
		server := api.NewServer(svc, svc, api.Limits{MaxLeaderboardCount: 100, MaxContextSize: 20})
		server.Register(ctx, mux)

		convey.Convey("A submitted score is readable through the leaderboard", func() {
			body := `{"game_id":"chess","time_frame":"alltime","player_id":"alice","score":100}`
			req := httptest.NewRequest("POST", "/scores", strings.NewReader(body))
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			convey.So(w.Code, convey.ShouldEqual, http.StatusOK)

			req = httptest.NewRequest("GET", "/leaderboard?game=chess&timeframe=alltime&count=10", nil)
			w = httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
			convey.So(w.Body.String(), convey.ShouldContainSubstring, "alice")
		})

		convey.Convey("The docs routes are registered", func() {
			req := httptest.NewRequest("GET", "/openapi.yaml", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
		})

		convey.Convey("The metrics updaters stop with their context", func() {
			tickCtx, cancel := context.WithCancel(ctx)
			done := make(chan struct{})
			go func() {
				startSystemMetricsUpdater(tickCtx)
				close(done)
			}()
			cancel()
			select {
			case <-done:
			case <-time.After(2 * time.Second):
				convey.So("updater did not stop", convey.ShouldBeEmpty)
			}
		})
	})
}
