package token

// TriviaKind classifies trivia.
type TriviaKind uint8

const (
	TriviaWhitespace TriviaKind = iota
	TriviaNewline
	TriviaLineComment
	TriviaBlockComment
	TriviaVerbatim // generated text spliced into a trivia list
)

func (k TriviaKind) String() string {
	switch k {
	case TriviaWhitespace:
		return "Whitespace"
	case TriviaNewline:
		return "Newline"
	case TriviaLineComment:
		return "LineComment"
	case TriviaBlockComment:
		return "BlockComment"
	case TriviaVerbatim:
		return "Verbatim"
	default:
		return "Unknown"
	}
}

// Trivia is non-significant text attached to a token.
// For comments, CommentStartLen and CommentEndLen give the byte length of
// the comment delimiters at both ends of Content.
type Trivia struct {
	Kind            TriviaKind
	Content         string
	CommentStartLen int
	CommentEndLen   int
}

// NewComment builds a comment trivia from its delimiters and body.
func NewComment(kind TriviaKind, start, body, end string) Trivia {
	return Trivia{
		Kind:            kind,
		Content:         start + body + end,
		CommentStartLen: len(start),
		CommentEndLen:   len(end),
	}
}

// NewVerbatimTrivia returns a trivia rendering text as-is.
func NewVerbatimTrivia(text string) Trivia {
	return Trivia{Kind: TriviaVerbatim, Content: text}
}

// IsComment reports whether t is a line or block comment.
func (t Trivia) IsComment() bool {
	return t.Kind == TriviaLineComment || t.Kind == TriviaBlockComment
}

// Body returns the comment content without its delimiters.
// Non-comment trivia return their content unchanged.
func (t Trivia) Body() string {
	if !t.IsComment() {
		return t.Content
	}
	end := len(t.Content) - t.CommentEndLen
	if t.CommentStartLen > end {
		return ""
	}
	return t.Content[t.CommentStartLen:end]
}

// WithBody returns a copy of the comment t with the same delimiters and a new body.
func (t Trivia) WithBody(body string) Trivia {
	if !t.IsComment() {
		t.Content = body
		return t
	}
	start := t.Content[:t.CommentStartLen]
	end := t.Content[len(t.Content)-t.CommentEndLen:]
	t.Content = start + body + end
	return t
}
