package catalog_test

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/okian/carwise/internal/domain/catalog"
	. "github.com/smartystreets/goconvey/convey"
)

func TestDefault(t *testing.T) {
	Convey("Given the embedded catalog", t, func() {
		c, err := catalog.Default()
		So(err, ShouldBeNil)

		Convey("Then brands are sorted and include the common makes", func() {
			brands := c.Brands()
			So(brands, ShouldContain, "Volkswagen")
			So(brands, ShouldContain, "Mercedes-Benz")
			for i := 1; i < len(brands); i++ {
				So(brands[i-1] < brands[i], ShouldBeTrue)
			}
		})

		Convey("Then base prices are looked up case-insensitively and through aliases", func() {
			p, ok := c.BasePrice("vw", "golf")
			So(ok, ShouldBeTrue)
			So(p, ShouldEqual, 17_000)

			p, ok = c.BasePrice("Fiat", "500")
			So(ok, ShouldBeTrue)
			So(p, ShouldEqual, 16_000)

			_, ok = c.BasePrice("Volkswagen", "Beetle")
			So(ok, ShouldBeFalse)
		})

		Convey("Then models are returned for a canonical brand", func() {
			So(c.Models("mercedes"), ShouldContain, "C-Class")
			So(c.Models("Trabant"), ShouldBeNil)
			So(c.Canonical("bmw"), ShouldEqual, "BMW")
		})

		Convey("Then a snapshot is detached from the catalog", func() {
			snap := c.Snapshot()
			snap["Volkswagen"][0] = "changed"
			So(c.Models("Volkswagen")[0], ShouldNotEqual, "changed")
		})
	})
}

func TestNormalize(t *testing.T) {
	Convey("Given a payload mixing every accepted shape", t, func() {
		var raw map[string]any
		payload := `{
			"Toyota": ["Yaris", "Corolla", " ", "Yaris", "RAV4"],
			"BMW": {"models": ["3 Series", "X5"]},
			"Skoda": {"Superb": {}, "Fabia": 1, "Octavia": null},
			"": ["ghost"],
			"Empty": [],
			"Bad": 42
		}`
		So(json.Unmarshal([]byte(payload), &raw), ShouldBeNil)

		Convey("When it is normalized", func() {
			got := catalog.Normalize(raw)

			Convey("Then arrays keep order, key sets are sorted, junk is dropped", func() {
				want := map[string][]string{
					"Toyota": {"Yaris", "Corolla", "RAV4"},
					"BMW":    {"3 Series", "X5"},
					"Skoda":  {"Fabia", "Octavia", "Superb"},
				}
				So(cmp.Diff(want, got), ShouldBeEmpty)
			})
		})
	})

	Convey("Given a nested models object", t, func() {
		raw := map[string]any{"Kia": map[string]any{"models": map[string]any{"Sportage": 32000, "Ceed": 23000}}}
		So(cmp.Diff(map[string][]string{"Kia": {"Ceed", "Sportage"}}, catalog.Normalize(raw)), ShouldBeEmpty)
	})
}

func TestLoad(t *testing.T) {
	Convey("Given an override file in JSON", t, func() {
		dir := t.TempDir()
		path := filepath.Join(dir, "catalog.json")
		So(os.WriteFile(path, []byte(`{"vw": {"Golf": 25000, "Up": 12000}, "Lada": ["Niva"]}`), 0o600), ShouldBeNil)

		c, err := catalog.Load(path)
		So(err, ShouldBeNil)

		Convey("Then brands are canonical and prices come from numeric values", func() {
			So(cmp.Diff([]string{"Lada", "Volkswagen"}, c.Brands()), ShouldBeEmpty)
			p, ok := c.BasePrice("Volkswagen", "Golf")
			So(ok, ShouldBeTrue)
			So(p, ShouldEqual, 25_000)
			_, ok = c.BasePrice("Lada", "Niva")
			So(ok, ShouldBeFalse)
		})
	})

	Convey("Given an override file in YAML", t, func() {
		path := filepath.Join(t.TempDir(), "catalog.yaml")
		So(os.WriteFile(path, []byte("Dacia:\n  models:\n    - Spring\n    - Duster\n"), 0o600), ShouldBeNil)

		c, err := catalog.Load(path)
		So(err, ShouldBeNil)
		So(c.Models("Dacia"), ShouldResemble, []string{"Spring", "Duster"})
	})

	Convey("Given broken inputs", t, func() {
		_, err := catalog.Load(filepath.Join(t.TempDir(), "missing.yaml"))
		So(errors.Is(err, catalog.ErrLoadCatalog), ShouldBeTrue)

		_, err = catalog.Parse([]byte("{not json"), true)
		So(errors.Is(err, catalog.ErrInvalidCatalog), ShouldBeTrue)

		_, err = catalog.Parse([]byte("{}"), true)
		So(errors.Is(err, catalog.ErrEmptyCatalog), ShouldBeTrue)
	})
}
