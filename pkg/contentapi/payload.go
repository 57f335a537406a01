package contentapi

// Payload is the kind-specific body of an Edition. Which of the optional
// sections are populated depends on Kind; presenters ask Capabilities rather
// than switching on Kind themselves.
type Payload struct {
	Kind         string            `json:"kind,omitempty" yaml:"kind"`
	Body         string            `json:"body,omitempty" yaml:"body"`
	Fields       map[string]string `json:"fields,omitempty" yaml:"fields"`
	Parts        []Part            `json:"parts,omitempty" yaml:"parts"`
	Nodes        []AnswerNode      `json:"nodes,omitempty" yaml:"nodes"`
	Expectations []string          `json:"expectations,omitempty" yaml:"expectations"`
	AssetIDs     map[string]string `json:"asset_ids,omitempty" yaml:"asset_ids"`
}

// Part is one page of a multi-part guide.
type Part struct {
	Slug  string `json:"slug" yaml:"slug"`
	Title string `json:"title" yaml:"title"`
	Body  string `json:"body" yaml:"body"`
	Order int    `json:"order" yaml:"order"`
}

// AnswerNode is one question or outcome of a simple smart answer.
type AnswerNode struct {
	Kind    string         `json:"kind" yaml:"kind"`
	Slug    string         `json:"slug" yaml:"slug"`
	Title   string         `json:"title" yaml:"title"`
	Body    string         `json:"body" yaml:"body"`
	Options []AnswerOption `json:"options" yaml:"options"`
}

// AnswerOption links a smart answer node to the next node.
type AnswerOption struct {
	Label    string `json:"label" yaml:"label"`
	Slug     string `json:"slug" yaml:"slug"`
	NextNode string `json:"next_node" yaml:"next_node"`
}

// Capabilities describes which optional payload sections a kind exposes.
type Capabilities struct {
	HasParts        bool
	HasNodes        bool
	HasExpectations bool
	AssetFields     []string
}

// Payload kinds with a non-default shape.
const (
	KindGuide             = "guide"
	KindProgramme         = "programme"
	KindSimpleSmartAnswer = "simple_smart_answer"
	KindPerson            = "person"
	KindOrganization      = "organization"
	KindCreativeWork      = "creative_work"
	KindVideo             = "video"
	KindNode              = "node"
	KindReport            = "report"
	KindTransaction       = "transaction"
	KindPlace             = "place"
)

var kindCapabilities = map[string]Capabilities{
	KindGuide:             {HasParts: true},
	KindProgramme:         {HasParts: true},
	KindSimpleSmartAnswer: {HasNodes: true},
	KindTransaction:       {HasExpectations: true},
	KindPlace:             {HasExpectations: true},
	KindPerson:            {AssetFields: []string{"image"}},
	KindOrganization:      {AssetFields: []string{"logo"}},
	KindCreativeWork:      {AssetFields: []string{"file", "thumbnail"}},
	KindVideo:             {AssetFields: []string{"caption_file"}},
	KindNode:              {AssetFields: []string{"logo"}},
	KindReport:            {AssetFields: []string{"report"}},
}

// Capabilities returns the optional sections this payload's kind supports.
func (p Payload) Capabilities() Capabilities {
	return kindCapabilities[p.Kind]
}

// Field returns an optional text field.
func (p Payload) Field(name string) (string, bool) {
	v, ok := p.Fields[name]
	return v, ok
}
