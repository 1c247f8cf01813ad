package resolve

import (
	"context"
	"errors"
	"strings"
	"time"
)

// Provider supplies the current resolution context on demand.
type Provider interface {
	ResolutionContext(ctx context.Context) (Context, error)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(ctx context.Context) (Context, error)

func (f ProviderFunc) ResolutionContext(ctx context.Context) (Context, error) {
	return f(ctx)
}

// Static returns a Provider that always yields a copy of c.
func Static(c Context) Provider {
	return ProviderFunc(func(context.Context) (Context, error) {
		return c.Clone(), nil
	})
}

// Clone returns a shallow copy.
func (c Context) Clone() Context {
	out := make(Context, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// Merge returns a new context with the entries of others layered over c, later wins.
func (c Context) Merge(others ...Context) Context {
	out := c.Clone()
	for _, o := range others {
		for k, v := range o {
			out[k] = v
		}
	}
	return out
}

// Builder assembles a resolution context from the customer panel, the acting agent and the clock.
type Builder struct {
	values Context
}

func NewBuilder() *Builder {
	return &Builder{values: Context{}}
}

// Set adds a single field. Blank names are ignored.
func (b *Builder) Set(name, value string) *Builder {
	name = strings.TrimSpace(name)
	if name == "" {
		return b
	}
	b.values[name] = value
	return b
}

// SetWithUpper adds name and an upper-cased alias stored under name_upper.
func (b *Builder) SetWithUpper(name, value string) *Builder {
	name = strings.TrimSpace(name)
	if name == "" {
		return b
	}
	b.values[name] = value
	b.values[name+"_upper"] = strings.ToUpper(value)
	return b
}

// Customer adds customer panel fields under a customer_ prefix, with upper-case aliases.
func (b *Builder) Customer(fields map[string]string) *Builder {
	for k, v := range fields {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		if !strings.HasPrefix(k, "customer_") {
			k = "customer_" + k
		}
		b.SetWithUpper(k, v)
	}
	return b
}

// Agent adds the acting agent's identity.
func (b *Builder) Agent(name, email string) *Builder {
	b.SetWithUpper("agent_name", name)
	b.Set("agent_email", email)
	return b
}

// Clock adds date, time, datetime and weekday for now in loc (UTC when nil).
func (b *Builder) Clock(now time.Time, loc *time.Location) *Builder {
	if loc == nil {
		loc = time.UTC
	}
	now = now.In(loc)
	b.Set("date", now.Format("2006-01-02"))
	b.Set("time", now.Format("15:04"))
	b.Set("datetime", now.Format("2006-01-02 15:04"))
	b.Set("weekday", now.Weekday().String())
	return b
}

// Vars parses k=v pairs (as given on a command line) into the context.
func (b *Builder) Vars(pairs []string) error {
	var errs []error
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || strings.TrimSpace(k) == "" {
			errs = append(errs, errors.New("invalid variable "+strings.TrimSpace(p)+" (want name=value)"))
			continue
		}
		b.Set(k, v)
	}
	return errors.Join(errs...)
}

// Build returns a copy of the assembled context.
func (b *Builder) Build() Context {
	return b.values.Clone()
}

// ResolutionContext makes a Builder usable as a Provider.
func (b *Builder) ResolutionContext(context.Context) (Context, error) {
	return b.Build(), nil
}
