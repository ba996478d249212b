package inmemory_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/inwardlabs/psyche/pkg/vector"
	"github.com/inwardlabs/psyche/pkg/vector/inmemory"
)

var _ = Describe("Driver", func() {
	var driver *inmemory.Driver

	BeforeEach(func() {
		driver = inmemory.NewDriver()
		docs := []vector.Document{
			{ID: "mem-1", Embedding: []float32{1, 0, 0}},
			{ID: "mem-2", Embedding: []float32{0, 1, 0}},
			{ID: "mem-3", Embedding: []float32{0.9, 0.1, 0}},
		}
		Expect(driver.Add(context.Background(), docs)).To(Succeed())
	})

	Describe("Query", func() {
		It("ranks by cosine similarity", func() {
			results, err := driver.Query(context.Background(), []float32{1, 0, 0}, 3)
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(HaveLen(3))
			Expect(results[0].ID).To(Equal("mem-1"))
			Expect(results[1].ID).To(Equal("mem-3"))
			Expect(results[2].ID).To(Equal("mem-2"))
		})

		It("respects topK", func() {
			results, err := driver.Query(context.Background(), []float32{1, 0, 0}, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(HaveLen(1))
		})

		It("scores mismatched dimensions as zero", func() {
			results, err := driver.Query(context.Background(), []float32{1, 0}, 3)
			Expect(err).NotTo(HaveOccurred())
			for _, r := range results {
				Expect(r.Score).To(BeZero())
			}
		})
	})

	Describe("Add", func() {
		It("replaces a document with the same id", func() {
			Expect(driver.Add(context.Background(), []vector.Document{
				{ID: "mem-1", Embedding: []float32{0, 0, 1}},
			})).To(Succeed())

			docs, err := driver.Get(context.Background(), []string{"mem-1"})
			Expect(err).NotTo(HaveOccurred())
			Expect(docs).To(HaveLen(1))
			Expect(docs[0].Embedding).To(Equal([]float32{0, 0, 1}))
		})
	})

	Describe("Delete", func() {
		It("removes documents from subsequent queries", func() {
			Expect(driver.Delete(context.Background(), []string{"mem-1"})).To(Succeed())

			results, err := driver.Query(context.Background(), []float32{1, 0, 0}, 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(HaveLen(2))
			Expect(results[0].ID).To(Equal("mem-3"))
		})
	})
})
