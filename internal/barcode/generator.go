package barcode

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"
)

// MaxAttempts çakışma durumunda denenecek en fazla aday sayısı.
const MaxAttempts = 100

var (
	ErrCategoryRequired    = errors.New("kategori zorunlu")
	ErrUnknownCategory     = errors.New("kategori kodu bulunamadı")
	ErrGenerationExhausted = errors.New("benzersiz barkod üretilemedi")
)

// Lookup barkod üretiminin ihtiyaç duyduğu kaynaklar.
type Lookup interface {
	// CategoryCodes aktif kategorilerin ad -> 2 haneli kod eşlemesi.
	CategoryCodes(ctx context.Context) (map[string]string, error)
	BarcodeExists(ctx context.Context, barcode string) (bool, error)
}

// IDSource 0-9999 aralığında aday id üretir.
type IDSource func() (int, error)

func randomID() (int, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(uniqueIDSpan))
	if err != nil {
		return 0, err
	}
	return int(n.Int64()), nil
}

type Suggestion struct {
	Barcode      string `json:"barcode"`
	Formatted    string `json:"formatted"`
	Category     string `json:"category"`
	CategoryCode string `json:"categoryCode"`
}

// Generator kategori kodlarını bellekte önbellekler. Adayın benzersizliği
// her seferinde ürün tablosuna karşı kontrol edilir.
type Generator struct {
	lookup Lookup
	nextID IDSource

	mu    sync.RWMutex
	codes map[string]string
}

type Option func(*Generator)

func WithIDSource(src IDSource) Option {
	return func(g *Generator) { g.nextID = src }
}

func NewGenerator(lookup Lookup, opts ...Option) *Generator {
	g := &Generator{lookup: lookup, nextID: randomID}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Invalidate kategori kodu önbelleğini temizler; kategori eklenince/silinince çağrılır.
func (g *Generator) Invalidate() {
	g.mu.Lock()
	g.codes = nil
	g.mu.Unlock()
}

func (g *Generator) loadCodes(ctx context.Context) (map[string]string, error) {
	g.mu.RLock()
	codes := g.codes
	g.mu.RUnlock()
	if codes != nil {
		return codes, nil
	}

	loaded, err := g.lookup.CategoryCodes(ctx)
	if err != nil {
		return nil, fmt.Errorf("kategori kodları yüklenemedi: %w", err)
	}

	g.mu.Lock()
	g.codes = loaded
	g.mu.Unlock()
	return loaded, nil
}

// CategoryCode kategori adının 2 haneli kodunu döner. Önbellekte yoksa bir kez yeniden yükler.
func (g *Generator) CategoryCode(ctx context.Context, category string) (string, error) {
	category = strings.TrimSpace(category)
	if category == "" {
		return "", ErrCategoryRequired
	}

	codes, err := g.loadCodes(ctx)
	if err != nil {
		return "", err
	}
	if code, ok := findCode(codes, category); ok {
		return code, nil
	}

	g.Invalidate()
	codes, err = g.loadCodes(ctx)
	if err != nil {
		return "", err
	}
	if code, ok := findCode(codes, category); ok {
		return code, nil
	}
	return "", ErrUnknownCategory
}

func findCode(codes map[string]string, category string) (string, bool) {
	if code, ok := codes[category]; ok {
		return code, true
	}
	for name, code := range codes {
		if strings.EqualFold(name, category) {
			return code, true
		}
	}
	return "", false
}

// Generate kategori için veritabanında bulunmayan bir barkod üretir.
func (g *Generator) Generate(ctx context.Context, category string) (string, error) {
	bc, _, err := g.generate(ctx, category)
	return bc, err
}

func (g *Generator) generate(ctx context.Context, category string) (string, string, error) {
	code, err := g.CategoryCode(ctx, category)
	if err != nil {
		return "", "", err
	}

	for attempt := 0; attempt < MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", "", err
		}

		id, err := g.nextID()
		if err != nil {
			return "", "", fmt.Errorf("aday id üretilemedi: %w", err)
		}
		candidate, err := Compose(code, id%uniqueIDSpan)
		if err != nil {
			return "", "", err
		}

		exists, err := g.lookup.BarcodeExists(ctx, candidate)
		if err != nil {
			return "", "", fmt.Errorf("barkod kontrolü başarısız: %w", err)
		}
		if !exists {
			return candidate, code, nil
		}
	}
	return "", "", ErrGenerationExhausted
}

// Suggest ürün formundaki "barkod öner" işlemi.
func (g *Generator) Suggest(ctx context.Context, category string) (Suggestion, error) {
	category = strings.TrimSpace(category)
	bc, code, err := g.generate(ctx, category)
	if err != nil {
		return Suggestion{}, err
	}
	return Suggestion{
		Barcode:      bc,
		Formatted:    Format(bc),
		Category:     category,
		CategoryCode: code,
	}, nil
}

// DecodeCategory mağaza barkodundan kategori adını bulur.
func (g *Generator) DecodeCategory(ctx context.Context, code string) (string, Parts, error) {
	parts, err := Decode(code)
	if err != nil {
		return "", Parts{}, err
	}
	codes, err := g.loadCodes(ctx)
	if err != nil {
		return "", parts, err
	}
	for name, c := range codes {
		if c == parts.CategoryCode {
			return name, parts, nil
		}
	}
	return "", parts, ErrUnknownCategory
}
