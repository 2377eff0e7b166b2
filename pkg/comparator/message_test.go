package comparator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genproto/googleapis/api/annotations"

	"github.com/platinummonkey/protodetect/pkg/findings"
	"github.com/platinummonkey/protodetect/pkg/schema"
)

func bookMessage() *schema.Message {
	return &schema.Message{
		Name:           "Book",
		FullName:       ".example.v1.Book",
		Fields:         make(map[int32]*schema.Field),
		NestedMessages: make(map[string]*schema.Message),
		NestedEnums:    make(map[string]*schema.Enum),
		Oneofs:         make(map[string]bool),
		APIVersion:     "v1",
		ProtoFileName:  "library/v1/library.proto",
		SourceCodeLine: 3,
	}
}

func TestMessageComparator_AdditionRemoval(t *testing.T) {
	t.Run("both absent", func(t *testing.T) {
		err := NewMessageComparator(nil, nil, findings.NewContainer()).Compare()
		assert.Error(t, err)
	})

	t.Run("addition", func(t *testing.T) {
		c := findings.NewContainer()
		require.NoError(t, NewMessageComparator(nil, bookMessage(), c).Compare())

		f := singleFinding(t, c)
		assert.Equal(t, findings.MessageAddition, f.Category)
		assert.Equal(t, findings.ChangeTypeMinor, f.ChangeType)
		assert.Equal(t, "A new message `Book` is added.", f.Message)
	})

	t.Run("removal", func(t *testing.T) {
		c := findings.NewContainer()
		require.NoError(t, NewMessageComparator(bookMessage(), nil, c).Compare())

		f := singleFinding(t, c)
		assert.Equal(t, findings.MessageRemoval, f.Category)
		assert.Equal(t, findings.ChangeTypeMajor, f.ChangeType)
		assert.Equal(t, "An existing message `Book` is removed.", f.Message)
	})
}

func TestMessageComparator_FieldsPairByNumber(t *testing.T) {
	original := bookMessage()
	original.Fields[1] = stringField("name")
	original.Fields[2] = stringField("author")
	updated := bookMessage()
	updated.Fields[1] = stringField("name")
	updated.Fields[3] = stringField("publisher")

	c := findings.NewContainer()
	require.NoError(t, NewMessageComparator(original, updated, c).Compare())

	messages := make([]string, 0, c.Len())
	for _, f := range c.All() {
		messages = append(messages, f.Message)
	}
	assert.Equal(t, []string{
		"An existing field `author` is removed.",
		"A new field `publisher` is added.",
	}, messages)
}

func TestMessageComparator_NestedRecursion(t *testing.T) {
	nested := func() *schema.Message {
		m := bookMessage()
		m.Name = "Chapter"
		m.FullName = ".example.v1.Book.Chapter"
		return m
	}

	original := bookMessage()
	original.NestedMessages["Chapter"] = nested()
	original.NestedMessages["Chapter"].Fields[1] = stringField("title")
	original.NestedEnums["BookFormat"] = bookFormatEnum(map[int32]string{0: "FORMAT_UNSPECIFIED"})

	updated := bookMessage()
	updated.NestedMessages["Chapter"] = nested()

	c := findings.NewContainer()
	require.NoError(t, NewMessageComparator(original, updated, c).Compare())

	messages := make([]string, 0, c.Len())
	for _, f := range c.All() {
		messages = append(messages, f.Message)
	}
	assert.Equal(t, []string{
		"An existing field `title` is removed.",
		"An existing Enum `BookFormat` is removed.",
	}, messages)
}

func TestMessageComparator_ResourceDefinition(t *testing.T) {
	t.Run("addition", func(t *testing.T) {
		original := bookMessage()
		updated := bookMessage()
		updated.Resource = bookResource()

		c := findings.NewContainer()
		require.NoError(t, NewMessageComparator(original, updated, c).Compare())

		f := singleFinding(t, c)
		assert.Equal(t, findings.ResourceDefinitionAddition, f.Category)
		assert.Equal(t, findings.ChangeTypeMinor, f.ChangeType)
		assert.Equal(t, "A message-level resource definition `library.googleapis.com/Book` is added.", f.Message)
	})

	t.Run("removal with file-level fallback", func(t *testing.T) {
		original := bookMessage()
		original.Resource = bookResource()
		updated := bookMessage()
		updated.ResourceDatabase = libraryDatabase()

		c := findings.NewContainer()
		require.NoError(t, NewMessageComparator(original, updated, c).Compare())

		f := singleFinding(t, c)
		assert.Equal(t, findings.ResourceDefinitionRemoval, f.Category)
		assert.Equal(t, findings.ChangeTypeMinor, f.ChangeType)
		assert.Equal(t, "An existing message-level resource definition `library.googleapis.com/Book` is removed, but it is still defined in the file-level resource definitions.", f.Message)
	})

	t.Run("removal without fallback", func(t *testing.T) {
		original := bookMessage()
		original.Resource = bookResource()
		updated := bookMessage()
		updated.ResourceDatabase = schema.NewResourceDatabase()

		c := findings.NewContainer()
		require.NoError(t, NewMessageComparator(original, updated, c).Compare())

		f := singleFinding(t, c)
		assert.Equal(t, findings.ResourceDefinitionRemoval, f.Category)
		assert.Equal(t, findings.ChangeTypeMajor, f.ChangeType)
		assert.Equal(t, "An existing message-level resource definition `library.googleapis.com/Book` is removed.", f.Message)
	})

	t.Run("type change", func(t *testing.T) {
		original := bookMessage()
		original.Resource = bookResource()
		updated := bookMessage()
		updated.Resource = &annotations.ResourceDescriptor{
			Type:    "library.googleapis.com/Publication",
			Pattern: []string{"shelves/{shelf}/books/{book}"},
		}

		c := findings.NewContainer()
		require.NoError(t, NewMessageComparator(original, updated, c).Compare())

		f := singleFinding(t, c)
		assert.Equal(t, findings.ResourceDefinitionChange, f.Category)
		assert.Equal(t, "The type of an existing message-level resource definition is changed from `library.googleapis.com/Book` to `library.googleapis.com/Publication`.", f.Message)
	})

	t.Run("pattern removal", func(t *testing.T) {
		original := bookMessage()
		original.Resource = &annotations.ResourceDescriptor{
			Type:    "library.googleapis.com/Book",
			Pattern: []string{"shelves/{shelf}/books/{book}", "archives/{archive}/books/{book}"},
		}
		updated := bookMessage()
		updated.Resource = bookResource()

		c := findings.NewContainer()
		require.NoError(t, NewMessageComparator(original, updated, c).Compare())

		f := singleFinding(t, c)
		assert.Equal(t, findings.ResourceDefinitionChange, f.Category)
		assert.Equal(t, findings.ChangeTypeMajor, f.ChangeType)
		assert.Equal(t, "An existing pattern `archives/{archive}/books/{book}` of the resource definition `library.googleapis.com/Book` is removed.", f.Message)
	})

	t.Run("pattern addition is tolerated", func(t *testing.T) {
		original := bookMessage()
		original.Resource = bookResource()
		updated := bookMessage()
		updated.Resource = &annotations.ResourceDescriptor{
			Type:    "library.googleapis.com/Book",
			Pattern: []string{"shelves/{shelf}/books/{book}", "archives/{archive}/books/{book}"},
		}

		c := findings.NewContainer()
		require.NoError(t, NewMessageComparator(original, updated, c).Compare())
		assert.Zero(t, c.Len())
	})
}
