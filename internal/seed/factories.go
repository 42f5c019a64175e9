// Package seed provides helpers to create demo blog data. These helpers are
// intended for development and testing only.
package seed

import (
	"fmt"
	"strings"
	"time"

	"cecilia/internal/content"
	"cecilia/internal/models"
	"cecilia/internal/validation"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// DefaultPassword is given to every seeded author.
const DefaultPassword = "password123"

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db    *gorm.DB
	faker *gofakeit.Faker
	opts  Options
	now   time.Time
	seq   int
}

// NewFactory creates a Factory. A zero opts.Seed picks a random seed.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	return &Factory{
		db:    db,
		faker: gofakeit.New(opts.Seed),
		opts:  opts.withDefaults(),
		now:   time.Now().UTC(),
	}
}

// BuildUser returns an unsaved author.
func (f *Factory) BuildUser(overrides ...func(*models.User)) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash seed password: %w", err)
	}
	f.seq++
	user := &models.User{
		Email:    fmt.Sprintf("autor%d.%s", f.seq, strings.ToLower(f.faker.Email())),
		Name:     f.faker.Name(),
		Password: string(hash),
	}
	for _, o := range overrides {
		o(user)
	}
	return user, nil
}

// BuildPost returns an unsaved post by author with a realistic mix of
// content blocks and a creation time within the last MaxDays.
func (f *Factory) BuildPost(author *models.User, overrides ...func(*models.Post)) *models.Post {
	f.seq++
	title := strings.TrimSuffix(f.faker.Sentence(f.faker.Number(3, 8)), ".")
	base := validation.Slugify(title)
	if base == "" {
		base = "post"
	}
	created := f.now.Add(-time.Duration(f.faker.Number(0, f.opts.MaxDays*24*60)) * time.Minute)

	post := &models.Post{
		Title:     title,
		Subtitle:  f.faker.Sentence(10),
		URLName:   fmt.Sprintf("%s-%d", base, f.seq),
		Content:   f.BuildBlocks(f.faker.Number(2, 8)),
		ImageURL:  fmt.Sprintf("https://picsum.photos/seed/%s/1200/630", f.faker.UUID()),
		AuthorID:  author.ID,
		Published: f.faker.Number(1, 100) > int(f.opts.DraftRatio*100),
		Keywords:  datatypes.JSONSlice[string]{f.faker.Word(), f.faker.Word()},
		MetaTitle: title,
		CreatedAt: created,
		UpdatedAt: created,
	}
	for _, o := range overrides {
		o(post)
	}
	return post
}

// BuildBlocks returns n content blocks. The first is always text.
func (f *Factory) BuildBlocks(n int) content.Blocks {
	blocks := make(content.Blocks, 0, n)
	blocks = append(blocks, f.textBlock())
	for len(blocks) < n {
		blocks = append(blocks, f.randomBlock())
	}
	return blocks
}

func (f *Factory) textBlock() content.Block {
	text := f.faker.Paragraph(1, 4, 12, " ")
	if f.faker.Bool() {
		text += fmt.Sprintf(" Saiba mais em (%s)[%s].", f.faker.Word(), f.faker.URL())
	}
	return content.TextBlock(text)
}

func (f *Factory) randomBlock() content.Block {
	switch f.faker.Number(0, 6) {
	case 0:
		url := fmt.Sprintf("https://picsum.photos/seed/%s/800/450", f.faker.UUID())
		return content.Block{Kind: content.KindImage, PrimaryText: url, ImageURL: url}
	case 1:
		url := f.faker.URL()
		return content.Block{Kind: content.KindLink, PrimaryText: f.faker.Sentence(3), LinkURL: url}
	case 2:
		quote := f.faker.HackerPhrase()
		return content.Block{Kind: content.KindQuote, PrimaryText: quote, QuoteText: quote}
	case 3:
		return content.Block{
			Kind:         content.KindCode,
			PrimaryText:  fmt.Sprintf("curl -s %s", f.faker.URL()),
			CodeLanguage: "bash",
		}
	case 4:
		items := []string{f.faker.Sentence(4), f.faker.Sentence(4), f.faker.Sentence(4)}
		return content.Block{Kind: content.KindList, PrimaryText: strings.Join(items, "\n"), ListItems: items}
	case 5:
		rows := [][]string{
			{"Plano", "Preço"},
			{f.faker.Word(), fmt.Sprintf("R$ %d", f.faker.Number(50, 900))},
			{f.faker.Word(), fmt.Sprintf("R$ %d", f.faker.Number(50, 900))},
		}
		return content.Block{Kind: content.KindTable, PrimaryText: "Planos", TableData: rows}
	default:
		return f.textBlock()
	}
}

// CreateUser builds and persists an author.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	user, err := f.BuildUser(overrides...)
	if err != nil {
		return nil, err
	}
	if err := f.db.Create(user).Error; err != nil {
		return nil, fmt.Errorf("create seed user: %w", err)
	}
	return user, nil
}

// CreatePostsBatch persists posts in batches.
func (f *Factory) CreatePostsBatch(posts []*models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	return f.db.CreateInBatches(posts, 200).Error
}
