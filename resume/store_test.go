package resume

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/scrubdeck/scrubdeck/filesystem"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	filesystem.SetMemMapFs()
}

func exerciseStore(store Store) {
	ctx := context.Background()
	older := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	newer := older.Add(time.Hour)

	Convey("Unknown URLs are absent", func() {
		got, err := store.Get(ctx, "http://x/none.mp4")
		So(err, ShouldBeNil)
		So(got, ShouldBeNil)

		opt, err := Lookup(ctx, store, "http://x/none.mp4")
		So(err, ShouldBeNil)
		So(opt.IsAbsent(), ShouldBeTrue)
	})

	Convey("Put then Get returns the state", func() {
		So(store.Put(ctx, "http://x/a.mp4", &State{Title: "a", PosSeconds: 30.5, DurationSeconds: 120, UpdatedAt: older}), ShouldBeNil)

		got, err := store.Get(ctx, "http://x/a.mp4")
		So(err, ShouldBeNil)
		So(got, ShouldNotBeNil)
		So(got.URL, ShouldEqual, "http://x/a.mp4")
		So(got.Title, ShouldEqual, "a")
		So(got.PosSeconds, ShouldEqual, 30.5)
		So(got.DurationSeconds, ShouldEqual, 120)
		So(got.UpdatedAt.Equal(older), ShouldBeTrue)

		Convey("Put overwrites", func() {
			So(store.Put(ctx, "http://x/a.mp4", &State{PosSeconds: 60, DurationSeconds: 120, UpdatedAt: newer}), ShouldBeNil)
			got, err := store.Get(ctx, "http://x/a.mp4")
			So(err, ShouldBeNil)
			So(got.PosSeconds, ShouldEqual, 60)
			So(got.Fraction(), ShouldEqual, 0.5)
		})

		Convey("List is ordered newest first", func() {
			So(store.Put(ctx, "/media/b.mkv", &State{PosSeconds: 5, UpdatedAt: newer}), ShouldBeNil)
			states, err := store.List(ctx)
			So(err, ShouldBeNil)
			So(len(states), ShouldEqual, 2)
			So(states[0].URL, ShouldEqual, "/media/b.mkv")
			So(states[1].URL, ShouldEqual, "http://x/a.mp4")
		})

		Convey("Delete removes the state", func() {
			So(store.Delete(ctx, "http://x/a.mp4"), ShouldBeNil)
			got, err := store.Get(ctx, "http://x/a.mp4")
			So(err, ShouldBeNil)
			So(got, ShouldBeNil)
			So(store.Delete(ctx, "http://x/a.mp4"), ShouldBeNil)
		})
	})
}

func TestMemoryStore(t *testing.T) {
	Convey("Given a memory store", t, func() {
		store := NewMemoryStore()
		Reset(func() { _ = store.Close() })
		exerciseStore(store)

		Convey("Stored states are copies", func() {
			state := &State{PosSeconds: 1}
			So(store.Put(context.Background(), "u", state), ShouldBeNil)
			state.PosSeconds = 99
			got, _ := store.Get(context.Background(), "u")
			So(got.PosSeconds, ShouldEqual, 1)
		})
	})
}

func TestGacheStore(t *testing.T) {
	Convey("Given a gache store", t, func() {
		filesystem.SetMemMapFs()
		store := NewGacheStore("/scrubdeck")
		exerciseStore(store)
	})
}

func TestSqliteStore(t *testing.T) {
	Convey("Given a sqlite store", t, func() {
		store, err := NewSqliteStore(t.TempDir())
		So(err, ShouldBeNil)
		Reset(func() { _ = store.Close() })
		exerciseStore(store)
	})
}

func TestNewStore(t *testing.T) {
	Convey("NewStore", t, func() {
		Convey("Defaults to gache", func() {
			store, err := NewStore("", "/scrubdeck")
			So(err, ShouldBeNil)
			So(store, ShouldHaveSameTypeAs, &GacheStore{})
		})

		Convey("Durable backends without a dir fall back to memory", func() {
			for _, backend := range []string{BackendGache, BackendSqlite} {
				store, err := NewStore(backend, "")
				So(err, ShouldBeNil)
				So(store, ShouldHaveSameTypeAs, &MemoryStore{})
			}
		})

		Convey("Sqlite with a dir opens a database", func() {
			store, err := NewStore(BackendSqlite, t.TempDir())
			So(err, ShouldBeNil)
			So(store, ShouldHaveSameTypeAs, &SqliteStore{})
			So(store.Close(), ShouldBeNil)
		})

		Convey("Unknown backends are rejected", func() {
			store, err := NewStore("redis", "/tmp")
			So(store, ShouldBeNil)
			So(err, ShouldNotBeNil)
			So(strings.Contains(err.Error(), "unknown resume store backend"), ShouldBeTrue)
		})
	})
}

func TestRecorder(t *testing.T) {
	Convey("Given a recorder with a fake clock", t, func() {
		store := NewMemoryStore()
		rec := NewRecorder(store, 10*time.Second)
		now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
		rec.now = func() time.Time { return now }
		ctx := context.Background()

		Convey("Writes are throttled per source", func() {
			wrote, err := rec.Record(ctx, "u", "t", 1, 100)
			So(err, ShouldBeNil)
			So(wrote, ShouldBeTrue)

			now = now.Add(5 * time.Second)
			wrote, _ = rec.Record(ctx, "u", "t", 6, 100)
			So(wrote, ShouldBeFalse)

			wrote, _ = rec.Record(ctx, "other", "", 6, 100)
			So(wrote, ShouldBeTrue)

			now = now.Add(5 * time.Second)
			wrote, _ = rec.Record(ctx, "u", "t", 11, 100)
			So(wrote, ShouldBeTrue)

			got, _ := store.Get(ctx, "u")
			So(got.PosSeconds, ShouldEqual, 11)
		})

		Convey("Finish marks the state as played to the end", func() {
			So(rec.Flush(ctx, "u", "t", 50, 100), ShouldBeNil)
			So(rec.Finish(ctx, "u", "t", 100), ShouldBeNil)
			got, _ := store.Get(ctx, "u")
			So(got.Finished, ShouldBeTrue)
			So(got.PosSeconds, ShouldEqual, 100)
			So(got.Title, ShouldEqual, "t")

			Convey("A later position clears the mark", func() {
				So(rec.Flush(ctx, "u", "t", 10, 100), ShouldBeNil)
				got, _ := store.Get(ctx, "u")
				So(got.Finished, ShouldBeFalse)
			})
		})

		Convey("An empty URL is never stored", func() {
			So(rec.Flush(ctx, "", "", 1, 1), ShouldBeNil)
			states, _ := store.List(ctx)
			So(states, ShouldBeEmpty)
		})
	})
}
