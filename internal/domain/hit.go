package domain

// Hit is one retrieved record: identifier, similarity score (higher is
// more relevant) and its metadata payload. Read-only downstream of the
// retriever.
type Hit struct {
	id      string
	score   float64
	payload Payload
}

// NewHit creates a hit. A nil field map yields an empty payload.
func NewHit(id string, score float64, fields map[string]string) Hit {
	return Hit{id: id, score: score, payload: NewPayload(fields)}
}

// ID returns the record identifier.
func (h Hit) ID() string { return h.id }

// Score returns the similarity score.
func (h Hit) Score() float64 { return h.score }

// Payload returns the metadata payload.
func (h Hit) Payload() Payload { return h.payload }

// textFields lists the body-text field candidates in priority order.
var textFields = []string{"text", "narration", "description", "content"}

// Payload is the metadata bag attached to an indexed record. Source
// schemas are heterogeneous, so no field is guaranteed present; the
// well-known fields get typed accessors and everything else stays in
// the residual bag.
type Payload struct {
	fields map[string]string
}

// NewPayload wraps a field map. The map is not copied; callers hand over
// ownership.
func NewPayload(fields map[string]string) Payload {
	if fields == nil {
		fields = map[string]string{}
	}
	return Payload{fields: fields}
}

// Text returns the body text: the first non-empty field among
// text, narration, description, content. Empty string when none present.
func (p Payload) Text() string {
	for _, name := range textFields {
		if v := p.fields[name]; v != "" {
			return v
		}
	}
	return ""
}

// Amount returns the amount field, if present.
func (p Payload) Amount() (string, bool) { return p.Field("amount") }

// Date returns the date field, if present.
func (p Payload) Date() (string, bool) { return p.Field("date") }

// AccountID returns the account_id field, if present.
func (p Payload) AccountID() (string, bool) { return p.Field("account_id") }

// TransactionID returns the transaction_id field, if present.
func (p Payload) TransactionID() (string, bool) { return p.Field("transaction_id") }

// Collection returns the source collection field, if present.
func (p Payload) Collection() (string, bool) { return p.Field("collection") }

// Field looks up an arbitrary payload field. Empty values count as absent.
func (p Payload) Field(name string) (string, bool) {
	v, ok := p.fields[name]
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// Fields returns a copy of all payload fields.
func (p Payload) Fields() map[string]string {
	out := make(map[string]string, len(p.fields))
	for k, v := range p.fields {
		out[k] = v
	}
	return out
}

// Len returns the number of payload fields.
func (p Payload) Len() int { return len(p.fields) }
