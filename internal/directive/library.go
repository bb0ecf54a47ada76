package directive

import (
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jaswdr/faker/v2"
)

type generatorFunc func(gen faker.Faker, now time.Time, args []any) any

// library enumerates the namespaces and members reachable through
// faker.<namespace>.<member>(args) directives and the fake() function.
var library = map[string]map[string]generatorFunc{
	"person": {
		"firstName": func(g faker.Faker, _ time.Time, _ []any) any { return g.Person().FirstName() },
		"lastName":  func(g faker.Faker, _ time.Time, _ []any) any { return g.Person().LastName() },
		"fullName":  func(g faker.Faker, _ time.Time, _ []any) any { return g.Person().Name() },
		"name":      func(g faker.Faker, _ time.Time, _ []any) any { return g.Person().Name() },
		"gender":    func(g faker.Faker, _ time.Time, _ []any) any { return g.Person().Gender() },
		"sex":       func(g faker.Faker, _ time.Time, _ []any) any { return strings.ToLower(g.Person().Gender()) },
		"jobTitle":  func(g faker.Faker, _ time.Time, _ []any) any { return g.Company().JobTitle() },
	},
	"internet": {
		"email":      func(g faker.Faker, _ time.Time, _ []any) any { return g.Internet().Email() },
		"userName":   func(g faker.Faker, _ time.Time, _ []any) any { return g.Internet().User() },
		"username":   func(g faker.Faker, _ time.Time, _ []any) any { return g.Internet().User() },
		"password":   func(g faker.Faker, _ time.Time, _ []any) any { return g.Internet().Password() },
		"domainName": func(g faker.Faker, _ time.Time, _ []any) any { return g.Internet().Domain() },
		"url":        func(g faker.Faker, _ time.Time, _ []any) any { return g.Internet().URL() },
		"ip":         func(g faker.Faker, _ time.Time, _ []any) any { return g.Internet().Ipv4() },
		"ipv4":       func(g faker.Faker, _ time.Time, _ []any) any { return g.Internet().Ipv4() },
		"ipv6":       func(g faker.Faker, _ time.Time, _ []any) any { return g.Internet().Ipv6() },
		"mac":        func(g faker.Faker, _ time.Time, _ []any) any { return g.Internet().MacAddress() },
		"slug":       func(g faker.Faker, _ time.Time, _ []any) any { return g.Internet().Slug() },
	},
	"location": {
		"streetAddress": func(g faker.Faker, _ time.Time, _ []any) any { return g.Address().StreetAddress() },
		"street":        func(g faker.Faker, _ time.Time, _ []any) any { return g.Address().StreetName() },
		"city":          func(g faker.Faker, _ time.Time, _ []any) any { return g.Address().City() },
		"state":         func(g faker.Faker, _ time.Time, _ []any) any { return g.Address().State() },
		"zipCode":       func(g faker.Faker, _ time.Time, _ []any) any { return g.Address().PostCode() },
		"country":       func(g faker.Faker, _ time.Time, _ []any) any { return g.Address().Country() },
		"latitude":      func(g faker.Faker, _ time.Time, _ []any) any { return round(g.Address().Latitude(), 6) },
		"longitude":     func(g faker.Faker, _ time.Time, _ []any) any { return round(g.Address().Longitude(), 6) },
	},
	"phone": {
		"number":      func(g faker.Faker, _ time.Time, _ []any) any { return g.Phone().Number() },
		"phoneNumber": func(g faker.Faker, _ time.Time, _ []any) any { return g.Phone().Number() },
	},
	"company": {
		"name":        func(g faker.Faker, _ time.Time, _ []any) any { return g.Company().Name() },
		"companyName": func(g faker.Faker, _ time.Time, _ []any) any { return g.Company().Name() },
		"catchPhrase": func(g faker.Faker, _ time.Time, _ []any) any { return g.Company().CatchPhrase() },
	},
	"lorem": {
		"word":      func(g faker.Faker, _ time.Time, _ []any) any { return g.Lorem().Word() },
		"words":     func(g faker.Faker, _ time.Time, a []any) any { return strings.Join(g.Lorem().Words(intArg(a, 0, "count", 3)), " ") },
		"sentence":  func(g faker.Faker, _ time.Time, a []any) any { return g.Lorem().Sentence(intArg(a, 0, "wordCount", 6)) },
		"paragraph": func(g faker.Faker, _ time.Time, a []any) any { return g.Lorem().Paragraph(intArg(a, 0, "sentenceCount", 3)) },
		"text":      func(g faker.Faker, _ time.Time, a []any) any { return g.Lorem().Text(intArg(a, 0, "maxChars", 200)) },
	},
	"finance": {
		"amount":           func(g faker.Faker, _ time.Time, a []any) any { return financeAmount(g, a) },
		"creditCardNumber": func(g faker.Faker, _ time.Time, _ []any) any { return g.Payment().CreditCardNumber() },
		"creditCardIssuer": func(g faker.Faker, _ time.Time, _ []any) any { return g.Payment().CreditCardType() },
		"currencyCode":     func(g faker.Faker, _ time.Time, _ []any) any { return g.Currency().Code() },
		"accountNumber":    func(g faker.Faker, _ time.Time, _ []any) any { return g.Numerify("########") },
		"iban":             func(g faker.Faker, _ time.Time, _ []any) any { return g.Bothify("GB##????##############") },
	},
	"color": {
		"rgb":   func(g faker.Faker, _ time.Time, _ []any) any { return g.Color().Hex() },
		"human": func(g faker.Faker, _ time.Time, _ []any) any { return g.Color().ColorName() },
	},
	"datatype": {
		"boolean": func(g faker.Faker, _ time.Time, _ []any) any { return g.Boolean().Bool() },
		"uuid":    func(_ faker.Faker, _ time.Time, _ []any) any { return uuid.NewString() },
		"number":  func(g faker.Faker, _ time.Time, a []any) any { return integer(g, a) },
	},
	"string": {
		"uuid":         func(_ faker.Faker, _ time.Time, _ []any) any { return uuid.NewString() },
		"alpha":        func(g faker.Faker, _ time.Time, a []any) any { return g.Lexify(strings.Repeat("?", lengthArg(a))) },
		"numeric":      func(g faker.Faker, _ time.Time, a []any) any { return g.Numerify(strings.Repeat("#", lengthArg(a))) },
		"alphanumeric": func(g faker.Faker, _ time.Time, a []any) any { return alphanumeric(g, lengthArg(a)) },
	},
	"number": {
		"int":   func(g faker.Faker, _ time.Time, a []any) any { return integer(g, a) },
		"float": func(g faker.Faker, _ time.Time, a []any) any { return decimal(g, a) },
	},
	"date": {
		"past":      func(g faker.Faker, now time.Time, a []any) any { return offset(g, now, -intArg(a, 0, "years", 1)*365*24) },
		"future":    func(g faker.Faker, now time.Time, a []any) any { return offset(g, now, intArg(a, 0, "years", 1)*365*24) },
		"recent":    func(g faker.Faker, now time.Time, a []any) any { return offset(g, now, -intArg(a, 0, "days", 1)*24) },
		"soon":      func(g faker.Faker, now time.Time, a []any) any { return offset(g, now, intArg(a, 0, "days", 1)*24) },
		"birthdate": func(g faker.Faker, now time.Time, _ []any) any { return birthdate(g, now) },
		"anytime":   func(g faker.Faker, now time.Time, _ []any) any { return offset(g, now, g.IntBetween(-10, 10)*365*24) },
	},
}

// callLibrary invokes namespace.member with JSON-decoded arguments.
func callLibrary(gen faker.Faker, now func() time.Time, namespace, member string, args []any) (any, bool) {
	members, ok := library[namespace]
	if !ok {
		return nil, false
	}
	fn, ok := members[member]
	if !ok {
		return nil, false
	}
	return fn(gen, now(), args), true
}

// intArg reads argument i, either positionally or as key of an options
// object in the first position.
func intArg(args []any, i int, key string, def int) int {
	if len(args) == 0 {
		return def
	}
	if opts, ok := args[0].(map[string]any); ok {
		if v, ok := opts[key].(float64); ok {
			return int(v)
		}
		return def
	}
	if i < len(args) {
		if v, ok := args[i].(float64); ok {
			return int(v)
		}
	}
	return def
}

func financeAmount(gen faker.Faker, args []any) float64 {
	return amount(gen, intArg(args, 0, "min", 0), intArg(args, 1, "max", 1000), intArg(args, 2, "dec", 2))
}

func integer(gen faker.Faker, args []any) float64 {
	lo, hi := intArg(args, 0, "min", 0), intArg(args, 1, "max", 99999)
	if hi < lo {
		lo, hi = hi, lo
	}
	return float64(gen.IntBetween(lo, hi))
}

func decimal(gen faker.Faker, args []any) float64 {
	return amount(gen, intArg(args, 0, "min", 0), intArg(args, 1, "max", 1000), intArg(args, 2, "precision", 2))
}

func lengthArg(args []any) int {
	return min(max(intArg(args, 0, "length", 8), 0), 256)
}

func alphanumeric(gen faker.Faker, n int) string {
	return gen.Bothify(strings.Repeat("?#", (n+1)/2))[:n]
}

func amount(gen faker.Faker, lo, hi, dec int) float64 {
	if hi < lo {
		lo, hi = hi, lo
	}
	dec = min(max(dec, 0), 6)
	scale := int(math.Pow10(dec))
	return float64(gen.IntBetween(lo*scale, hi*scale)) / float64(scale)
}

func round(f float64, dec int) float64 {
	scale := math.Pow10(dec)
	return math.Round(f*scale) / scale
}

// offset returns an RFC 3339 timestamp a random number of hours between
// now and now+hours.
func offset(gen faker.Faker, now time.Time, hours int) string {
	lo, hi := 0, hours
	if hours < 0 {
		lo, hi = hours, 0
	}
	d := time.Duration(gen.IntBetween(lo*60, hi*60)) * time.Minute
	return now.Add(d).UTC().Format(time.RFC3339)
}

func birthdate(gen faker.Faker, now time.Time) string {
	years := gen.IntBetween(18, 80)
	days := gen.IntBetween(0, 364)
	return now.AddDate(-years, 0, -days).UTC().Format(time.DateOnly)
}
