package category

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jaswdr/faker/v2"

	"github.com/artefactual-labs/apimock/internal/schema"
)

// Strategies in priority order: security, identity and personal data,
// location, finance, web, business, content, date-time, metadata and
// numeric-by-name.
var Strategies = []Strategy{
	// Security.
	{
		Category: "security",
		Match:    contains("password", "passwd"),
		Generate: func(g faker.Faker, _ Field) any { return g.Internet().Password() },
	},
	{
		Category: "security",
		Match:    contains("token", "secret", "apikey"),
		Generate: func(_ faker.Faker, _ Field) any { return hex(32) },
	},
	{
		Category: "security",
		Match:    contains("hash", "checksum", "digest"),
		Generate: func(_ faker.Faker, _ Field) any { return hex(64) },
	},

	// Identity and personal data.
	{
		Category: "identity",
		Match:    either(exact("id", "uuid", "guid"), lastWord("id", "uuid", "guid")),
		Generate: func(g faker.Faker, f Field) any {
			if f.Kind == schema.KindNumber {
				return between(g, 1, 10000)
			}
			return uuid.NewString()
		},
	},
	{
		Category: "identity",
		Match:    contains("firstname", "givenname", "forename"),
		Generate: func(g faker.Faker, _ Field) any { return g.Person().FirstName() },
	},
	{
		Category: "identity",
		Match:    contains("lastname", "surname", "familyname"),
		Generate: func(g faker.Faker, _ Field) any { return g.Person().LastName() },
	},
	{
		Category: "identity",
		Match:    either(contains("username", "login", "nickname"), exact("handle", "user")),
		Generate: func(g faker.Faker, _ Field) any { return g.Internet().User() },
	},
	{
		Category: "identity",
		Match:    either(exact("name", "author", "owner", "contact"), contains("fullname", "displayname")),
		Generate: func(g faker.Faker, _ Field) any { return g.Person().Name() },
	},
	{
		Category: "identity",
		Match:    contains("email", "mail"),
		Generate: func(g faker.Faker, _ Field) any { return g.Internet().Email() },
	},
	{
		Category: "identity",
		Match:    either(contains("phone", "mobile", "fax"), exact("tel", "telephone", "cell")),
		Generate: func(g faker.Faker, _ Field) any { return g.Phone().Number() },
	},
	{
		Category: "identity",
		Match:    exact("gender", "sex"),
		Generate: func(g faker.Faker, _ Field) any { return g.Person().Gender() },
	},
	{
		Category: "identity",
		Match:    either(exact("age"), lastWord("age")),
		Generate: func(g faker.Faker, _ Field) any { return between(g, 18, 100) },
	},
	{
		Category: "identity",
		Match:    either(contains("birth"), exact("dob")),
		Generate: func(g faker.Faker, f Field) any {
			return f.Now.AddDate(-g.IntBetween(18, 80), 0, -g.IntBetween(0, 364)).Format(time.DateOnly)
		},
	},

	// Location.
	{
		Category: "location",
		Match:    isStreetAddress,
		Generate: func(g faker.Faker, _ Field) any { return g.Address().StreetAddress() },
	},
	{
		Category: "location",
		Match:    contains("city", "town"),
		Generate: func(g faker.Faker, _ Field) any { return g.Address().City() },
	},
	{
		Category: "location",
		Match:    contains("state", "province", "region", "county"),
		Generate: func(g faker.Faker, _ Field) any { return g.Address().State() },
	},
	{
		Category: "location",
		Match:    contains("zip", "postal", "postcode"),
		Generate: func(g faker.Faker, _ Field) any { return g.Address().PostCode() },
	},
	{
		Category: "location",
		Match:    contains("country"),
		Generate: func(g faker.Faker, _ Field) any { return g.Address().Country() },
	},
	{
		Category: "location",
		Match:    either(contains("latitude"), exact("lat")),
		Generate: func(g faker.Faker, _ Field) any { return float64(g.IntBetween(-90_000_000, 90_000_000)) / 1e6 },
	},
	{
		Category: "location",
		Match:    either(contains("longitude"), exact("lng", "lon", "long")),
		Generate: func(g faker.Faker, _ Field) any { return float64(g.IntBetween(-180_000_000, 180_000_000)) / 1e6 },
	},

	// Finance.
	{
		Category: "finance",
		Match:    contains("price", "cost", "amount", "total", "fee", "balance", "salary", "revenue"),
		Generate: func(g faker.Faker, _ Field) any { return cents(g, 1, 1000) },
	},
	{
		Category: "finance",
		Match:    contains("currency"),
		Generate: func(g faker.Faker, _ Field) any { return g.Currency().Code() },
	},
	{
		Category: "finance",
		Match:    contains("creditcard", "cardnumber"),
		Generate: func(g faker.Faker, _ Field) any { return g.Payment().CreditCardNumber() },
	},
	{
		Category: "finance",
		Match:    contains("iban", "accountnumber"),
		Generate: func(g faker.Faker, _ Field) any { return g.Numerify("##########") },
	},

	// Web.
	{
		Category: "web",
		Match:    contains("avatar", "image", "photo", "picture", "thumbnail", "logo"),
		Generate: func(g faker.Faker, _ Field) any {
			return "https://picsum.photos/seed/" + g.Lexify("????????") + "/640/480"
		},
	},
	{
		Category: "web",
		Match:    either(contains("url", "website", "homepage", "href"), exact("link", "uri")),
		Generate: func(g faker.Faker, _ Field) any { return g.Internet().URL() },
	},
	{
		Category: "web",
		Match:    contains("domain", "hostname"),
		Generate: func(g faker.Faker, _ Field) any { return g.Internet().Domain() },
	},
	{
		Category: "web",
		Match:    either(contains("ipaddress", "ipv4"), exact("ip")),
		Generate: func(g faker.Faker, _ Field) any { return g.Internet().Ipv4() },
	},
	{
		Category: "web",
		Match:    contains("ipv6"),
		Generate: func(g faker.Faker, _ Field) any { return g.Internet().Ipv6() },
	},
	{
		Category: "web",
		Match:    contains("slug"),
		Generate: func(g faker.Faker, _ Field) any { return g.Internet().Slug() },
	},
	{
		Category: "web",
		Match:    contains("macaddress"),
		Generate: func(g faker.Faker, _ Field) any { return g.Internet().MacAddress() },
	},

	// Business.
	{
		Category: "business",
		Match:    contains("company", "organization", "organisation", "employer", "business"),
		Generate: func(g faker.Faker, _ Field) any { return g.Company().Name() },
	},
	{
		Category: "business",
		Match:    either(contains("jobtitle", "occupation", "profession"), exact("position", "job")),
		Generate: func(g faker.Faker, _ Field) any { return g.Company().JobTitle() },
	},
	{
		Category: "business",
		Match:    contains("department"),
		Generate: func(g faker.Faker, _ Field) any {
			return g.RandomStringElement([]string{"Engineering", "Sales", "Marketing", "Finance", "Support", "Operations"})
		},
	},
	{
		Category: "business",
		Match:    contains("slogan", "tagline", "catchphrase"),
		Generate: func(g faker.Faker, _ Field) any { return g.Company().CatchPhrase() },
	},

	// Content.
	{
		Category: "content",
		Match:    contains("description", "summary", "bio", "about", "comment", "message", "content", "text", "note"),
		Generate: func(g faker.Faker, _ Field) any { return g.Lorem().Sentence(12) },
	},
	{
		Category: "content",
		Match:    either(contains("title", "subject", "headline", "caption"), exact("label")),
		Generate: func(g faker.Faker, _ Field) any {
			return strings.TrimSuffix(g.Lorem().Sentence(4), ".")
		},
	},
	{
		Category: "content",
		Match:    contains("color", "colour"),
		Generate: func(g faker.Faker, _ Field) any { return g.Color().ColorName() },
	},
	{
		Category: "content",
		Match:    either(exact("word", "keyword", "tag"), lastWord("tag", "keyword")),
		Generate: func(g faker.Faker, _ Field) any { return g.Lorem().Word() },
	},

	// Date-time.
	{
		Category: "datetime",
		Match:    either(contains("date", "time", "timestamp"), lastWord("at", "on")),
		Generate: func(g faker.Faker, f Field) any {
			t := f.Now.Add(-time.Duration(g.IntBetween(0, 365*24*60)) * time.Minute)
			if f.Kind == schema.KindNumber {
				return float64(t.UnixMilli())
			}
			return t.UTC().Format(time.RFC3339)
		},
	},
	{
		Category: "datetime",
		Match:    exact("year"),
		Generate: func(g faker.Faker, f Field) any { return between(g, 1970, f.Now.Year()) },
	},

	// Metadata.
	{
		Category: "metadata",
		Match:    firstWord("is", "has", "can", "should", "allow"),
		Generate: func(g faker.Faker, _ Field) any { return g.Boolean().Bool() },
	},
	{
		Category: "metadata",
		Match:    contains("enabled", "active", "verified", "deleted", "published", "visible"),
		Generate: func(g faker.Faker, f Field) any {
			if f.Kind == schema.KindString {
				return g.RandomStringElement([]string{"active", "inactive", "pending"})
			}
			return g.Boolean().Bool()
		},
	},
	{
		Category: "metadata",
		Match:    contains("status"),
		Generate: func(g faker.Faker, _ Field) any {
			return g.RandomStringElement([]string{"active", "inactive", "pending"})
		},
	},
	{
		Category: "metadata",
		Match:    contains("version"),
		Generate: func(g faker.Faker, f Field) any {
			if f.Kind == schema.KindNumber {
				return between(g, 1, 10)
			}
			return g.Numerify("#.#.#")
		},
	},
	{
		Category: "metadata",
		Match:    either(contains("locale", "language"), exact("lang")),
		Generate: func(g faker.Faker, _ Field) any {
			return g.RandomStringElement([]string{"en-US", "en-GB", "es-ES", "fr-FR", "de-DE", "pt-BR"})
		},
	},
	{
		Category: "metadata",
		Match:    either(exact("type", "kind", "category"), lastWord("type", "kind", "category")),
		Generate: func(g faker.Faker, _ Field) any { return g.Lorem().Word() },
	},

	// Numeric by name.
	{
		Category: "numeric",
		Match:    contains("rating", "stars", "score"),
		Generate: func(g faker.Faker, _ Field) any { return between(g, 1, 5) },
	},
	{
		Category: "numeric",
		Match:    contains("percent", "progress", "ratio"),
		Generate: func(g faker.Faker, _ Field) any { return between(g, 0, 100) },
	},
	{
		Category: "numeric",
		Match:    contains("quantity", "qty", "count", "stock", "number"),
		Generate: func(g faker.Faker, _ Field) any { return between(g, 1, 100) },
	},
	{
		Category: "numeric",
		Match:    contains("width", "height", "size", "weight", "length", "duration"),
		Generate: func(g faker.Faker, _ Field) any { return between(g, 1, 1000) },
	},
}

func isStreetAddress(f Field) bool {
	return contains("address", "street")(f) && !contains("ipaddress", "macaddress")(f)
}
