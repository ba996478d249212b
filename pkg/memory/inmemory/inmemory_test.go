package inmemory_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/inwardlabs/psyche/pkg/memory"
	"github.com/inwardlabs/psyche/pkg/memory/inmemory"
)

func testItem(text string, tags []string, importance float64, at time.Time) memory.Item {
	item := memory.NewItem(memory.SpeakerUser, text, tags, importance)
	item.Timestamp = at
	return item
}

var _ = Describe("Driver", func() {
	var (
		ctx    context.Context
		driver *inmemory.Driver
		now    time.Time
	)

	BeforeEach(func() {
		ctx = context.Background()
		driver = inmemory.NewDriver(memory.DefaultParams())
		now = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	})

	Describe("Promote", func() {
		It("stores an independent snapshot", func() {
			item := testItem("remember the lighthouse", []string{"travel"}, 0.8, now)
			Expect(driver.Promote(ctx, item)).To(Succeed())

			item.Tags[0] = "mutated"

			got, err := driver.Resolve(ctx, item.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Tags).To(Equal([]string{"travel"}))
		})

		It("overwrites on duplicate id", func() {
			item := testItem("first draft", []string{"notes"}, 0.5, now)
			Expect(driver.Promote(ctx, item)).To(Succeed())

			item.Text = "second draft"
			Expect(driver.Promote(ctx, item)).To(Succeed())

			n, err := driver.Len(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(Equal(1))

			got, err := driver.Resolve(ctx, item.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Text).To(Equal("second draft"))
		})
	})

	Describe("Query", func() {
		It("matches any tag and ranks by importance then recency", func() {
			older := testItem("about the sea", []string{"sea"}, 0.9, now.Add(-time.Hour))
			newer := testItem("also about the sea", []string{"sea"}, 0.9, now)
			minor := testItem("a passing mention", []string{"sea", "smalltalk"}, 0.3, now)
			other := testItem("about mountains", []string{"mountains"}, 1.0, now)

			for _, item := range []memory.Item{older, newer, minor, other} {
				Expect(driver.Promote(ctx, item)).To(Succeed())
			}

			got, err := driver.Query(ctx, []string{"sea"}, 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(HaveLen(3))
			Expect(got[0].ID).To(Equal(newer.ID))
			Expect(got[1].ID).To(Equal(older.ID))
			Expect(got[2].ID).To(Equal(minor.ID))
		})

		It("returns nothing for an empty tag set", func() {
			Expect(driver.Promote(ctx, testItem("anything", []string{"x"}, 0.9, now))).To(Succeed())

			got, err := driver.Query(ctx, nil, 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(BeEmpty())
		})

		It("excludes retired items", func() {
			faded := testItem("barely matters", []string{"sea"}, 0.01, now.Add(-48*time.Hour))
			Expect(driver.Promote(ctx, faded)).To(Succeed())

			retired, err := driver.DecayPass(ctx, now)
			Expect(err).NotTo(HaveOccurred())
			Expect(retired).To(Equal(1))

			got, err := driver.Query(ctx, []string{"sea"}, 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(BeEmpty())

			// Retired, not purged.
			n, err := driver.Len(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(Equal(1))
		})
	})

	Describe("DecayPass", func() {
		It("decays importance by elapsed time", func() {
			item := testItem("fading memory", []string{"misc"}, 0.8, now.Add(-time.Hour))
			Expect(driver.Promote(ctx, item)).To(Succeed())

			_, err := driver.DecayPass(ctx, now)
			Expect(err).NotTo(HaveOccurred())

			got, err := driver.Resolve(ctx, item.ID)
			Expect(err).NotTo(HaveOccurred())
			// One hour at factor 0.98 per hour.
			Expect(got.Importance).To(BeNumerically("~", 0.8*0.98, 1e-9))
		})
	})

	Describe("Reconcile", func() {
		var a, b memory.Item

		BeforeEach(func() {
			a = testItem("we talked about the old lighthouse by the cliff", []string{"travel"}, 0.9, now)
			b = testItem("we talked about the old lighthouse by the cliff today", []string{"travel"}, 0.6, now)
			Expect(driver.Promote(ctx, a)).To(Succeed())
			Expect(driver.Promote(ctx, b)).To(Succeed())
		})

		It("collapses near-duplicates into the higher-importance item", func() {
			merged, err := driver.Reconcile(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(merged).To(Equal(1))

			survivor, err := driver.Resolve(ctx, a.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(survivor.Importance).To(Equal(0.9))
			Expect(survivor.Provenance).To(ContainElement(b.ID))
		})

		It("keeps merged ids resolvable to the survivor", func() {
			_, err := driver.Reconcile(ctx)
			Expect(err).NotTo(HaveOccurred())

			got, err := driver.Resolve(ctx, b.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.ID).To(Equal(a.ID))
		})

		It("is idempotent", func() {
			_, err := driver.Reconcile(ctx)
			Expect(err).NotTo(HaveOccurred())

			before, err := driver.All(ctx)
			Expect(err).NotTo(HaveOccurred())

			merged, err := driver.Reconcile(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(merged).To(BeZero())

			after, err := driver.All(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(after).To(Equal(before))
		})

		It("leaves dissimilar items with the same tags alone", func() {
			c := testItem("an entirely different topic of conversation", []string{"travel"}, 0.5, now)
			Expect(driver.Promote(ctx, c)).To(Succeed())

			_, err := driver.Reconcile(ctx)
			Expect(err).NotTo(HaveOccurred())

			got, err := driver.Resolve(ctx, c.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.ID).To(Equal(c.ID))
		})
	})

	Describe("Resolve", func() {
		It("returns NotFoundError for unknown ids", func() {
			_, err := driver.Resolve(ctx, "no-such-id")
			Expect(err).To(MatchError(memory.NotFoundError{ID: "no-such-id"}))
		})
	})
})
