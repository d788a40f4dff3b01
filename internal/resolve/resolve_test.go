package resolve

import (
	"strings"
	"testing"

	"rentscan/internal/catalog"

	"github.com/stretchr/testify/require"
)

func newCatalog(t *testing.T, vehicles string) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.Load(catalog.Readers{
		Vehicles:   strings.NewReader(vehicles),
		Vendors:    strings.NewReader("code,name\nMOV,Movida\n"),
		Categories: strings.NewReader("code,name\nECO,Economy\n"),
	})
	require.NoError(t, err)
	return cat
}

const testVehicles = `alias;canonicalCode;canonicalName
fiat mobi like;MOBI;Fiat Mobi
Renault Kwid Zen;KWID;Renault Kwid
Hyundai HB20;HB20;Hyundai HB20
`

func TestResolve(t *testing.T) {
	resolver, err := New(newCatalog(t, testVehicles), DefaultThreshold)
	require.NoError(t, err)

	testCases := []struct {
		name       string
		raw        string
		resolved   bool
		canonical  string
		confidence int
	}{
		{name: "exact alias", raw: "Fiat Mobi Like", resolved: true, canonical: "Fiat Mobi", confidence: 100},
		{name: "exact after normalization", raw: "  HYUNDAI   hb-20 ", resolved: true, canonical: "Hyundai HB20", confidence: 100},
		{name: "token superset", raw: "FIAT MOBI LIKE 1.0", resolved: true, canonical: "Fiat Mobi", confidence: 100},
		{name: "partial overlap above threshold", raw: "Renault Sandero", resolved: true, canonical: "Renault Kwid", confidence: 65},
		{name: "no shared tokens", raw: "zzzz qqqq", resolved: false, confidence: 16},
		{name: "empty", raw: "", resolved: false, confidence: 0},
		{name: "punctuation only", raw: "!!!", resolved: false, confidence: 0},
	}
	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			match := resolver.Resolve(test.raw)
			require.Equal(t, test.resolved, match.Resolved)
			require.Equal(t, test.confidence, match.Confidence)
			require.Equal(t, test.canonical, match.Vehicle.CanonicalName)
		})
	}
}

func TestResolveThreshold(t *testing.T) {
	cat := newCatalog(t, testVehicles)

	strict, err := New(cat, 70)
	require.NoError(t, err)
	match := strict.Resolve("Renault Sandero")
	require.False(t, match.Resolved)
	require.Equal(t, 65, match.Confidence)

	lenient, err := New(cat, 50)
	require.NoError(t, err)
	require.True(t, lenient.Resolve("Renault Sandero").Resolved)

	_, err = New(cat, 101)
	require.Error(t, err)
	_, err = New(cat, -1)
	require.Error(t, err)
	_, err = New(nil, DefaultThreshold)
	require.Error(t, err)
}

func TestResolveTieFirstSeenWins(t *testing.T) {
	resolver, err := New(newCatalog(t, "alias;canonicalCode;canonicalName\nfiat mobi;A;First\nmobi fiat;B;Second\n"), DefaultThreshold)
	require.NoError(t, err)

	match := resolver.Resolve("fiat mobi trekking")
	require.True(t, match.Resolved)
	require.Equal(t, 100, match.Confidence)
	require.Equal(t, "First", match.Vehicle.CanonicalName)
}

func TestResolveDuplicateKeyLastRowWins(t *testing.T) {
	resolver, err := New(newCatalog(t, "alias;canonicalCode;canonicalName\nfiat mobi;A;First\nFIAT MOBI;B;Second\n"), DefaultThreshold)
	require.NoError(t, err)

	match := resolver.Resolve("fiat mobi")
	require.True(t, match.Resolved)
	require.Equal(t, "Second", match.Vehicle.CanonicalName)
}

func TestResolveEmptyCatalog(t *testing.T) {
	resolver, err := New(newCatalog(t, "alias;canonicalCode;canonicalName\n"), 0)
	require.NoError(t, err)

	match := resolver.Resolve("Fiat Mobi")
	require.False(t, match.Resolved)
	require.Equal(t, 0, match.Confidence)
}

func TestResolveZeroThresholdAcceptsAnyAlias(t *testing.T) {
	cat := newCatalog(t, "alias;canonicalCode;canonicalName\nabc;ABC;Abc\ndef;DEF;Def\n")
	resolver, err := New(cat, 0)
	require.NoError(t, err)

	match := resolver.Resolve("xyz")
	require.True(t, match.Resolved, "a score of 0 reaches a threshold of 0")
	require.Equal(t, 0, match.Confidence)
	require.Equal(t, "Abc", match.Vehicle.CanonicalName, "first alias in load order wins the tie")

	strict, err := New(cat, 1)
	require.NoError(t, err)
	require.False(t, strict.Resolve("xyz").Resolved)
}

func TestResolveExactCodes(t *testing.T) {
	resolver, err := New(newCatalog(t, testVehicles), DefaultThreshold)
	require.NoError(t, err)

	name, ok := resolver.ResolveVendor("MOV")
	require.True(t, ok)
	require.Equal(t, "Movida", name)

	_, ok = resolver.ResolveVendor("Movida")
	require.False(t, ok)

	name, ok = resolver.ResolveCategory("ECO")
	require.True(t, ok)
	require.Equal(t, "Economy", name)

	_, ok = resolver.ResolveCategory("eco")
	require.False(t, ok)
}
