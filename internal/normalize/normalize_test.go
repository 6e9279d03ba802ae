package normalize

import (
	"encoding/json"
	"testing"
)

func TestList_AllKnownShapesYieldSameResult(t *testing.T) {
	bodies := map[string]string{
		"bare array":        `[{"_id":"1","name":"A"},{"_id":"2","name":"B"}]`,
		"resource key":      `{"institutes":[{"_id":"1","name":"A"},{"_id":"2","name":"B"}]}`,
		"data array":        `{"data":[{"_id":"1","name":"A"},{"_id":"2","name":"B"}]}`,
		"nested under data": `{"data":{"institutes":[{"_id":"1","name":"A"},{"_id":"2","name":"B"}]}}`,
	}

	for label, body := range bodies {
		list, ok := List(Institutes, json.RawMessage(body))
		if !ok {
			t.Fatalf("%s: expected recognized shape", label)
		}
		if len(list) != 2 {
			t.Fatalf("%s: expected 2 records, got %d", label, len(list))
		}

		var first struct {
			ID   string `json:"_id"`
			Name string `json:"name"`
		}
		if err := json.Unmarshal(list[0], &first); err != nil {
			t.Fatalf("%s: decode first record: %v", label, err)
		}
		if first.ID != "1" || first.Name != "A" {
			t.Fatalf("%s: expected first record 1/A, got %s/%s", label, first.ID, first.Name)
		}
	}
}

func TestList_SpecScenario(t *testing.T) {
	body := `{"data":{"institutes":[{"_id":"1","name":"A"}]}}`
	list, ok := List(Institutes, json.RawMessage(body))
	if !ok {
		t.Fatal("expected recognized shape")
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 record, got %d", len(list))
	}
	if string(list[0]) != `{"_id":"1","name":"A"}` {
		t.Fatalf("unexpected record: %s", list[0])
	}
}

func TestList_NoListAnywhereReturnsEmpty(t *testing.T) {
	bodies := []string{
		`{}`,
		`{"message":"ok"}`,
		`{"data":{"count":3}}`,
		`"just a string"`,
		`42`,
		`null`,
		``,
		`{invalid json`,
	}

	for _, body := range bodies {
		list, ok := List(Courses, json.RawMessage(body))
		if ok {
			t.Fatalf("body %q: expected unrecognized shape", body)
		}
		if list == nil {
			t.Fatalf("body %q: result must be empty, not nil", body)
		}
		if len(list) != 0 {
			t.Fatalf("body %q: expected empty result, got %d records", body, len(list))
		}
	}
}

func TestList_FallbackPicksFirstArrayFieldInSortedKeyOrder(t *testing.T) {
	// Neither the resource key nor "data" is present; the fallback must be
	// deterministic regardless of backend field order.
	body := `{"zebra":[{"_id":"z"}],"alpha":[{"_id":"a"}],"meta":{"page":1}}`

	for i := 0; i < 20; i++ {
		list, ok := List(Reviews, json.RawMessage(body))
		if !ok {
			t.Fatal("expected fallback to find an array field")
		}
		if len(list) != 1 {
			t.Fatalf("expected 1 record, got %d", len(list))
		}
		if string(list[0]) != `{"_id":"a"}` {
			t.Fatalf("expected the alpha field to win, got %s", list[0])
		}
	}
}

func TestList_EmptyBackendListStaysEmptyNotError(t *testing.T) {
	list, ok := List(Enquiries, json.RawMessage(`{"enquiries":[]}`))
	if !ok {
		t.Fatal("expected recognized shape")
	}
	if len(list) != 0 {
		t.Fatalf("expected empty list, got %d", len(list))
	}
}

func TestList_ResourceKeyWinsOverDataKey(t *testing.T) {
	body := `{"data":[{"_id":"wrong"}],"facilities":[{"_id":"right"}]}`
	list, ok := List(Facilities, json.RawMessage(body))
	if !ok {
		t.Fatal("expected recognized shape")
	}
	if string(list[0]) != `{"_id":"right"}` {
		t.Fatalf("resource key must take precedence, got %s", list[0])
	}
}

func TestRecord_UnwrapsEnvelopes(t *testing.T) {
	cases := map[string]string{
		`{"_id":"1","name":"A"}`:               `{"_id":"1","name":"A"}`,
		`{"data":{"_id":"1","name":"A"}}`:      `{"_id":"1","name":"A"}`,
		`{"institute":{"_id":"1","name":"A"}}`: `{"_id":"1","name":"A"}`,
		`{"data":{"institute":{"_id":"1"}}}`:   `{"_id":"1"}`,
	}

	for body, want := range cases {
		got := Record("institute", json.RawMessage(body))
		var gotNorm, wantNorm any
		if err := json.Unmarshal(got, &gotNorm); err != nil {
			t.Fatalf("body %s: decode result: %v", body, err)
		}
		if err := json.Unmarshal([]byte(want), &wantNorm); err != nil {
			t.Fatalf("bad expectation %s: %v", want, err)
		}
		gotJSON, _ := json.Marshal(gotNorm)
		wantJSON, _ := json.Marshal(wantNorm)
		if string(gotJSON) != string(wantJSON) {
			t.Fatalf("body %s: expected %s, got %s", body, wantJSON, gotJSON)
		}
	}
}

func TestInto_SkipsUndecodableRecords(t *testing.T) {
	type item struct {
		Name string `json:"name"`
	}
	records := []json.RawMessage{
		json.RawMessage(`{"name":"ok"}`),
		json.RawMessage(`"not an object"`),
		json.RawMessage(`{"name":"also ok"}`),
	}

	items := Into[item](records)
	if len(items) != 2 {
		t.Fatalf("expected 2 decoded items, got %d", len(items))
	}
	if items[0].Name != "ok" || items[1].Name != "also ok" {
		t.Fatalf("unexpected items: %+v", items)
	}
}
