package core

import (
	"errors"
	"reflect"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	r := NewDailyRecord("2026-10-14")
	r.ApplySale("barolo", SalePatch{Bottles: intp(2), Glasses: intp(4)})
	r.ApplyLoss("barolo", LossPatch{Category: catp(LossBroken), BrokenBottles: intp(1), Note: strp("rotta")})
	r.ToggleFavorite("chianti")

	data, err := EncodeRecord(r)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := DecodeRecord("2026-10-14", data, nil)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !reflect.DeepEqual(r, got) {
		t.Fatalf("round trip mismatch:\n%+v\n%+v", r, got)
	}
}

func TestDecodeRecordMalformed(t *testing.T) {
	for _, data := range []string{"", "   ", "{", "[]", `"x"`} {
		got, err := DecodeRecord("2026-10-14", []byte(data), nil)
		if !errors.Is(err, ErrMalformedRecord) {
			t.Fatalf("%q expected ErrMalformedRecord, got %v", data, err)
		}
		if got.Date != "2026-10-14" || got.Sales == nil || got.Losses == nil || got.Favorites == nil {
			t.Fatalf("%q expected empty default record, got %+v", data, got)
		}
		if len(got.Sales)+len(got.Losses)+len(got.Favorites) != 0 {
			t.Fatalf("%q expected no lines, got %+v", data, got)
		}
	}
}

func TestDecodeRecordNormalizes(t *testing.T) {
	data := []byte(`{
		"date": "1999-01-01",
		"sales": {
			"barolo": {"itemId": "other", "bottles": -3, "glasses": 4000},
			"ghost": {"bottles": 1}
		},
		"losses": {
			"barolo": {"category": "remaining_discard", "brokenBottles": 3},
			"chianti": {"category": "weird"}
		},
		"favorites": {"barolo": true, "chianti": false, "ghost": true}
	}`)
	known := map[string]bool{"barolo": true, "chianti": true}

	got, err := DecodeRecord("2026-10-14", data, known)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Date != "2026-10-14" {
		t.Fatalf("date not forced: %s", got.Date)
	}
	if got.Sales["barolo"] != (SaleLine{ItemID: "barolo", Bottles: 0, Glasses: MaxQuantity}) {
		t.Fatalf("sale not normalized: %+v", got.Sales["barolo"])
	}
	if _, ok := got.Sales["ghost"]; ok {
		t.Fatalf("unknown id kept")
	}
	if got.Losses["barolo"].BrokenBottles != 0 || got.Losses["chianti"].Category != LossNone {
		t.Fatalf("losses not normalized: %+v", got.Losses)
	}
	if !reflect.DeepEqual(got.Favorites, map[string]bool{"barolo": true}) {
		t.Fatalf("favorites not normalized: %v", got.Favorites)
	}
}

func TestStorageKey(t *testing.T) {
	key := StorageKey("2026-10-14")
	if key != "enoteca:draft:2026-10-14" {
		t.Fatalf("unexpected key %q", key)
	}
	d, ok := DateFromStorageKey(key)
	if !ok || d != "2026-10-14" {
		t.Fatalf("reverse failed: %q %v", d, ok)
	}
	if _, ok := DateFromStorageKey("other:2026-10-14"); ok {
		t.Fatalf("foreign key accepted")
	}
}
