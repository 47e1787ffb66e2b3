package models

// Domain is one of the fixed retrieval corpora. The value doubles as the
// relational table holding the domain's rows.
type Domain string

const (
	DomainService Domain = "qa_service"
	DomainOil     Domain = "oli_fix"
	DomainCar     Domain = "gabungan_umum"
	DomainTruck   Domain = "gabungan_bis_truk"
)

// NoKeyword stands in for a blank keyword so the entry still gets ranked.
const NoKeyword = "_nokey"

func Domains() []Domain {
	return []Domain{DomainService, DomainOil, DomainCar, DomainTruck}
}

func (d Domain) Valid() bool {
	switch d {
	case DomainService, DomainOil, DomainCar, DomainTruck:
		return true
	}
	return false
}

// PriceBearing reports whether answers from this domain may carry price
// placeholders.
func (d Domain) PriceBearing() bool {
	return d != DomainService
}

// KnowledgeEntry is one retrievable passage. Entries are immutable after load
// and addressed by their position within the domain corpus.
type KnowledgeEntry struct {
	Domain   Domain `db:"-" json:"-"`
	ID       int64  `db:"id"`
	OriginID string `db:"origin_id"`
	Category string `db:"category"`
	Question string `db:"question"`
	Answer   string `db:"answer"`
	Context  string `db:"context"`
	Keyword  string `db:"keyword"`
}

type PriceEntry struct {
	Placeholder string `db:"placeholder"`
	Price       string `db:"harga"`
}
