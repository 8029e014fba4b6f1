package store_test

import (
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"

	"github.com/rezonia/cfdi-reader/internal/model"
	"github.com/rezonia/cfdi-reader/internal/store"
)

var _ = Describe("BoltStore", func() {
	var (
		dbPath string
		db     *store.BoltStore
	)

	BeforeEach(func() {
		dbPath = filepath.Join(GinkgoT().TempDir(), "history.db")
		var err error
		db, err = store.Open(dbPath)
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		if db != nil {
			db.Close()
		}
	})

	Describe("Save", func() {
		var (
			record *store.Record
			err    error
		)

		JustBeforeEach(func() {
			record, err = db.Save("factura.xml", newSummary("1024"))
		})

		It("should not return an error", func() {
			Expect(err).NotTo(HaveOccurred())
		})

		It("should assign an id and timestamp", func() {
			Expect(record.ID).NotTo(BeEmpty())
			Expect(record.ExtractedAt).NotTo(BeZero())
			Expect(record.Source).To(Equal("factura.xml"))
		})

		It("should persist the summary", func() {
			saved, getErr := db.Get(record.ID)
			Expect(getErr).NotTo(HaveOccurred())
			Expect(saved.Summary.Folio).To(Equal("1024"))
		})

		When("the summary is nil", func() {
			It("should return an error", func() {
				_, nilErr := db.Save("x.xml", nil)
				Expect(nilErr).To(HaveOccurred())
			})
		})
	})

	Describe("Get", func() {
		var (
			id     string
			record *store.Record
			err    error
		)

		JustBeforeEach(func() {
			record, err = db.Get(id)
		})

		When("the record exists", func() {
			BeforeEach(func() {
				saved, saveErr := db.Save("factura.xml", newSummary("77"))
				Expect(saveErr).NotTo(HaveOccurred())
				id = saved.ID
			})

			It("should not return an error", func() {
				Expect(err).NotTo(HaveOccurred())
			})

			It("should keep the receptor", func() {
				Expect(record.Summary.ReceptorTaxID).To(Equal("URE180429TM6"))
				Expect(record.Summary.ReceptorName).To(Equal("UNIVERSIDAD ROBOTICA ESPAÑOLA"))
			})

			It("should keep exact line amounts", func() {
				Expect(record.Summary.LineItems).To(HaveLen(1))
				item := record.Summary.LineItems[0]
				Expect(item.Tax.Equal(decimal.RequireFromString("20"))).To(BeTrue())
				Expect(item.Retention.Equal(decimal.RequireFromString("1.5625"))).To(BeTrue())
				Expect(item.Total.Equal(decimal.RequireFromString("143.4375"))).To(BeTrue())
			})

			It("should keep absent addenda fields absent", func() {
				Expect(record.Summary.OrderNumber).To(Equal([]string{"4500012345"}))
				Expect(record.Summary.DeliveryNoteNumber).To(BeNil())
			})
		})

		When("the record does not exist", func() {
			BeforeEach(func() {
				id = "nonexistent"
			})

			It("should return ErrNotFound", func() {
				Expect(err).To(MatchError(store.ErrNotFound))
				Expect(record).To(BeNil())
			})
		})
	})

	Describe("List", func() {
		When("the store is empty", func() {
			It("should return an empty list", func() {
				records, err := db.List()
				Expect(err).NotTo(HaveOccurred())
				Expect(records).To(BeEmpty())
			})
		})

		When("several extractions were saved", func() {
			BeforeEach(func() {
				for _, folio := range []string{"1", "2", "3"} {
					_, err := db.Save("f"+folio+".xml", newSummary(folio))
					Expect(err).NotTo(HaveOccurred())
				}
			})

			It("should return them in insertion order", func() {
				records, err := db.List()
				Expect(err).NotTo(HaveOccurred())
				Expect(records).To(HaveLen(3))
				Expect(records[0].Summary.Folio).To(Equal("1"))
				Expect(records[1].Summary.Folio).To(Equal("2"))
				Expect(records[2].Summary.Folio).To(Equal("3"))
			})
		})
	})

	Describe("Delete", func() {
		It("should remove the record", func() {
			saved, err := db.Save("factura.xml", newSummary("9"))
			Expect(err).NotTo(HaveOccurred())

			Expect(db.Delete(saved.ID)).To(Succeed())

			_, err = db.Get(saved.ID)
			Expect(err).To(MatchError(store.ErrNotFound))
		})

		It("should report unknown ids", func() {
			Expect(db.Delete("nonexistent")).To(MatchError(store.ErrNotFound))
		})
	})

	Describe("reopening", func() {
		It("should keep records across restarts", func() {
			saved, err := db.Save("factura.xml", newSummary("5"))
			Expect(err).NotTo(HaveOccurred())
			Expect(db.Close()).To(Succeed())

			db, err = store.Open(dbPath)
			Expect(err).NotTo(HaveOccurred())

			record, err := db.Get(saved.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(record.Summary.Folio).To(Equal("5"))
		})
	})
})

func newSummary(folio string) *model.InvoiceSummary {
	concept := model.NewConcept("TOR-001", "TORNILLO", 10, "12.50", decimal.RequireFromString("125"))
	return &model.InvoiceSummary{
		Date:          "15/01/2024",
		Folio:         folio,
		ReceptorName:  "UNIVERSIDAD ROBOTICA ESPAÑOLA",
		ReceptorTaxID: "URE180429TM6",
		LineItems:     []model.Concept{concept},
		OrderNumber:   []string{"4500012345"},
	}
}
