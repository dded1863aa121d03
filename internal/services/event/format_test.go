package event

import (
	"testing"

	"github.com/LeonardoBeccarini/connevents/internal/model"
)

func TestFormatDate(t *testing.T) {
	cases := []struct {
		in   model.Number
		want string
	}{
		{model.Int(0), "no date"},
		{model.NaN, "no date"},
		{model.Int(1609459200), "2021-01-01T00:00:00.000Z"},
		{model.Int(1470912225), "2016-08-11T10:43:45.000Z"},
		{model.Int(253402300799), "9999-12-31T23:59:59.000Z"},
		{model.Int(253402300800), "no date"},
		{model.Int(1<<63 - 1), "no date"},
	}
	for _, tc := range cases {
		if got := FormatDate(tc.in); got != tc.want {
			t.Errorf("FormatDate(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestFormatLine(t *testing.T) {
	r := model.EventRecord{Epoch: model.Int(1609459200), Millis: "1642", Code: model.Int(1), Data: model.Int(1)}
	got := FormatLine("electron-01", r, Decode(r))
	want := "electron-01,2021-01-01T00:00:00.000Z,1642,CELLULAR_READY connected"
	if got != want {
		t.Fatalf("FormatLine:\nexpected: %q\nactual:   %q", want, got)
	}
}

func TestFormatLine_NoDateAndUnknown(t *testing.T) {
	r := model.EventRecord{Epoch: model.Int(0), Millis: "52", Code: model.Int(99), Data: model.Int(0)}
	got := FormatLine("dev", r, Decode(r))
	if got != "dev,no date,52," {
		t.Fatalf("unexpected line %q", got)
	}
}
