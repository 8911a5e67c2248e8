package regnode

import (
	"errors"
	"testing"
)

func TestParseKindAcceptsClosedTagSet(t *testing.T) {
	tags := map[string]Kind{
		"k_NODE_VALUE_CONSTANT": KindConstant,
		"k_NODE_VALUE_CALL":     KindCall,
		"k_NODE_VALUE_NUM_TYPE": KindNumType,
		"k_NODE_VALUE_COMMON":   KindCommon,
		"k_NODE_VALUE_ARG":      KindArg,
		"k_NODE_VALUE_ADD":      KindAdd,
		"k_NODE_VALUE_AND":      KindAnd,
		"k_NODE_VALUE_OR":       KindOr,
		"k_NODE_VALUE_SHL":      KindShl,
		"k_NODE_VALUE_LSHR":     KindLshr,
		"k_NODE_VALUE_PHI":      KindPhi,
		"k_NODE_VALUE_SELECT":   KindSelect,
	}
	for tag, want := range tags {
		got, err := ParseKind(tag)
		if err != nil {
			t.Errorf("ParseKind(%q): %v", tag, err)
			continue
		}
		if got != want {
			t.Errorf("ParseKind(%q) = %v, want %v", tag, got, want)
		}
	}
}

func TestParseKindRejectsUnknownTag(t *testing.T) {
	_, err := ParseKind("k_NODE_VALUE_MUL")
	var unknown *UnknownKindError
	if !errors.As(err, &unknown) {
		t.Fatalf("err = %v, want UnknownKindError", err)
	}
	if unknown.Tag != "k_NODE_VALUE_MUL" {
		t.Fatalf("tag = %q, want the offending tag", unknown.Tag)
	}

	if _, err := ParseKind(""); err == nil {
		t.Fatal("ParseKind(\"\") succeeded, want error")
	}
}

func TestKindPredicates(t *testing.T) {
	for _, k := range []Kind{KindAdd, KindAnd, KindOr, KindShl, KindLshr} {
		if !k.IsBinary() {
			t.Errorf("%v.IsBinary() = false", k)
		}
	}
	for _, k := range []Kind{KindConstant, KindCall, KindNumType, KindCommon, KindArg, KindPhi, KindSelect} {
		if k.IsBinary() {
			t.Errorf("%v.IsBinary() = true", k)
		}
	}
	if !KindPhi.IsMerge() || !KindSelect.IsMerge() {
		t.Error("phi/select should be merge kinds")
	}
	if KindArg.IsMerge() {
		t.Error("arg is not a merge kind")
	}
}

func TestBindMarksIdentifier(t *testing.T) {
	n := Constant(1)
	if n.HasID {
		t.Fatal("fresh constant should carry no identifier")
	}
	n.Bind(12)
	if !n.HasID || n.ID != 12 {
		t.Fatalf("Bind: HasID=%v ID=%d", n.HasID, n.ID)
	}
}
