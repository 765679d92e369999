package content

import "context"

// Client performs item CRUD against the remote platform for one course.
// All calls block; errors wrap ErrNotFound or ErrTransport.
type Client interface {
	List(ctx context.Context, kind Kind) ([]Summary, error)
	Get(ctx context.Context, kind Kind, id string) (*Remote, error)
	Create(ctx context.Context, kind Kind, fields Fields) (*Remote, error)
	Update(ctx context.Context, kind Kind, id string, fields Fields) (*Remote, error)
}

// SubmissionChecker reports whether learners have already submitted work
// against an item.
type SubmissionChecker interface {
	HasSubmissions(ctx context.Context, kind Kind, id string) (bool, error)
}

// Converter translates between the platform's rich text (HTML) and the
// portable markup stored locally.
type Converter interface {
	ToPortable(ctx context.Context, rich string) (string, error)
	ToRich(ctx context.Context, portable string) (string, error)
}

// Adapter encodes one content kind to and from its local file and remote
// representations.
type Adapter interface {
	Kind() Kind
	// Ext is the file extension, including the leading dot.
	Ext() string
	// SlugAddressed reports whether the remote derives identifiers from
	// titles, making them predictable before creation.
	SlugAddressed() bool
	Decode(path string, data []byte) (*Item, error)
	Encode(item *Item) ([]byte, error)
	FromRemote(ctx context.Context, r *Remote) (*Item, error)
	ToRemote(ctx context.Context, item *Item) (Fields, error)
}

// Aligner is implemented by adapters whose items carry sub-elements that
// receive remote identifiers on first write. Align copies those
// identifiers from r onto item and reports whether item changed.
type Aligner interface {
	Align(item *Item, r *Remote) (bool, error)
}

// CourseClient reads and writes the settings of the course itself.
type CourseClient interface {
	// GetCourse returns the course settings. The "front_page" field holds
	// the identifier of the front page, or nil when none is set.
	GetCourse(ctx context.Context) (Fields, error)
	UpdateCourse(ctx context.Context, fields Fields) (Fields, error)
	SetFrontPage(ctx context.Context, pageID string) error
	AssignmentGroups(ctx context.Context) ([]Fields, error)
}
