package store

import (
	"context"
	"errors"
	"testing"
)

// sliceFetch: data turun; keyset = nilai terakhir yang sudah dikirim.
func sliceFetch(data []int, batch int, calls *int, failOn int) func(context.Context, *int) ([]int, error) {
	return func(_ context.Context, last *int) ([]int, error) {
		*calls++
		if failOn > 0 && *calls == failOn {
			return nil, errors.New("connection reset")
		}
		start := 0
		if last != nil {
			for start < len(data) && data[start] >= *last {
				start++
			}
		}
		end := start + batch
		if end > len(data) {
			end = len(data)
		}
		return append([]int(nil), data[start:end]...), nil
	}
}

func drain(t *testing.T, c Cursor[int]) ([]int, error) {
	t.Helper()
	var out []int
	for {
		v, ok, err := c.Next(context.Background())
		if err != nil {
			return out, err
		}
		if !ok {
			return out, nil
		}
		out = append(out, v)
	}
}

func TestKeysetCursorBatchBoundaries(t *testing.T) {
	cases := []struct {
		name      string
		rows      int
		batch     int
		wantCalls int
	}{
		{"empty", 0, 3, 1},
		{"partial batch", 2, 3, 1},
		{"exact multiple", 6, 3, 3}, // batch penuh terakhir butuh satu fetch kosong
		{"remainder", 7, 3, 3},
		{"batch of one", 3, 1, 4},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			data := make([]int, tc.rows)
			for i := range data {
				data[i] = tc.rows - i
			}
			calls := 0
			c := &keysetCursor[int]{fetch: sliceFetch(data, tc.batch, &calls, 0), batch: tc.batch}

			got, err := drain(t, c)
			if err != nil {
				t.Fatalf("drain: %v", err)
			}
			if len(got) != tc.rows {
				t.Fatalf("got %d rows want %d: %v", len(got), tc.rows, got)
			}
			for i := range got {
				if got[i] != data[i] {
					t.Fatalf("row %d = %d want %d (keyset skipped or repeated)", i, got[i], data[i])
				}
			}
			if calls != tc.wantCalls {
				t.Fatalf("fetch calls=%d want %d", calls, tc.wantCalls)
			}

			// habis tetap habis, tanpa fetch baru
			if _, ok, _ := c.Next(context.Background()); ok {
				t.Fatalf("cursor should stay exhausted")
			}
			if calls != tc.wantCalls {
				t.Fatalf("exhausted cursor fetched again")
			}
		})
	}
}

func TestKeysetCursorFetchErrorMidway(t *testing.T) {
	data := []int{9, 8, 7, 6, 5, 4, 3}
	calls := 0
	c := &keysetCursor[int]{fetch: sliceFetch(data, 3, &calls, 2), batch: 3}

	got, err := drain(t, c)
	if err == nil {
		t.Fatalf("expected fetch error")
	}
	if len(got) != 3 || got[2] != 7 {
		t.Fatalf("rows before error=%v", got)
	}
}

func TestKeysetCursorClose(t *testing.T) {
	calls := 0
	c := &keysetCursor[int]{fetch: sliceFetch([]int{3, 2, 1}, 2, &calls, 0), batch: 2}
	if v, ok, err := c.Next(context.Background()); err != nil || !ok || v != 3 {
		t.Fatalf("first=%v %v %v", v, ok, err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if _, ok, _ := c.Next(context.Background()); ok {
		t.Fatalf("closed cursor returned a row")
	}
	if calls != 1 {
		t.Fatalf("closed cursor fetched again")
	}
}
