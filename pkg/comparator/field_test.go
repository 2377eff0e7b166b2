package comparator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genproto/googleapis/api/annotations"

	"github.com/platinummonkey/protodetect/pkg/findings"
	"github.com/platinummonkey/protodetect/pkg/schema"
)

func stringField(name string) *schema.Field {
	return &schema.Field{
		Name:           name,
		Number:         1,
		ProtoType:      "TYPE_STRING",
		ProtoFileName:  "library/v1/library.proto",
		SourceCodeLine: 10,
	}
}

func singleFinding(t *testing.T, c *findings.Container) findings.Finding {
	t.Helper()
	all := c.All()
	require.Len(t, all, 1)
	return all[0]
}

func TestFieldComparator_BothAbsent(t *testing.T) {
	err := NewFieldComparator(nil, nil, findings.NewContainer()).Compare()
	assert.Error(t, err)
}

func TestFieldComparator_Addition(t *testing.T) {
	c := findings.NewContainer()
	require.NoError(t, NewFieldComparator(nil, stringField("page_count"), c).Compare())

	f := singleFinding(t, c)
	assert.Equal(t, findings.FieldAddition, f.Category)
	assert.Equal(t, findings.ChangeTypeMinor, f.ChangeType)
	assert.Equal(t, "A new field `page_count` is added.", f.Message)
	assert.Equal(t, "library/v1/library.proto", f.Location.ProtoFileName)
	assert.Equal(t, 10, f.Location.SourceCodeLine)
}

func TestFieldComparator_Removal(t *testing.T) {
	c := findings.NewContainer()
	require.NoError(t, NewFieldComparator(stringField("page_count"), nil, c).Compare())

	f := singleFinding(t, c)
	assert.Equal(t, findings.FieldRemoval, f.Category)
	assert.Equal(t, findings.ChangeTypeMajor, f.ChangeType)
	assert.Equal(t, "An existing field `page_count` is removed.", f.Message)
}

func TestFieldComparator_NameChangeShortCircuits(t *testing.T) {
	original := stringField("page_count")
	updated := stringField("page_total")
	// Piling more differences onto a renamed field must not produce extra
	// findings; the rename ends the checklist.
	updated.Repeated = true
	updated.ProtoType = "TYPE_INT32"

	c := findings.NewContainer()
	require.NoError(t, NewFieldComparator(original, updated, c).Compare())

	f := singleFinding(t, c)
	assert.Equal(t, findings.FieldNameChange, f.Category)
	assert.Equal(t, findings.ChangeTypeMajor, f.ChangeType)
	assert.Equal(t, "Name of an existing field is changed from `page_count` to `page_total`.", f.Message)
}

func TestFieldComparator_RepeatedChange(t *testing.T) {
	original := stringField("authors")
	updated := stringField("authors")
	updated.Repeated = true

	c := findings.NewContainer()
	require.NoError(t, NewFieldComparator(original, updated, c).Compare())

	f := singleFinding(t, c)
	assert.Equal(t, findings.FieldRepeatedChange, f.Category)
	assert.Equal(t, findings.ChangeTypeMajor, f.ChangeType)
	assert.Equal(t, "Repeated state of an existing field `authors` is changed.", f.Message)
}

func TestFieldComparator_BehaviorChange(t *testing.T) {
	t.Run("optional to required is breaking", func(t *testing.T) {
		original := stringField("name")
		updated := stringField("name")
		updated.Required = true

		c := findings.NewContainer()
		require.NoError(t, NewFieldComparator(original, updated, c).Compare())

		f := singleFinding(t, c)
		assert.Equal(t, findings.FieldBehaviorChange, f.Category)
		assert.Equal(t, findings.ChangeTypeMajor, f.ChangeType)
		assert.Equal(t, "Field behavior of an existing field `name` is changed.", f.Message)
	})

	t.Run("required to optional is tolerated", func(t *testing.T) {
		original := stringField("name")
		original.Required = true
		updated := stringField("name")

		c := findings.NewContainer()
		require.NoError(t, NewFieldComparator(original, updated, c).Compare())
		assert.Zero(t, c.Len())
	})
}

func TestFieldComparator_PrimitiveTypeChange(t *testing.T) {
	original := stringField("page_count")
	original.ProtoType = "TYPE_INT32"
	updated := stringField("page_count")

	c := findings.NewContainer()
	require.NoError(t, NewFieldComparator(original, updated, c).Compare())

	f := singleFinding(t, c)
	assert.Equal(t, findings.FieldTypeChange, f.Category)
	assert.Equal(t, findings.ChangeTypeMajor, f.ChangeType)
	assert.Equal(t, "Type of an existing field `page_count` is changed from `TYPE_INT32` to `TYPE_STRING`.", f.Message)
}

func TestFieldComparator_TypeNameChange(t *testing.T) {
	original := stringField("format")
	original.ProtoType = "TYPE_ENUM"
	original.TypeName = ".example.v1.BookFormat"
	original.APIVersion = "v1"
	updated := stringField("format")
	updated.ProtoType = "TYPE_ENUM"
	updated.APIVersion = "v1"

	t.Run("rename is breaking", func(t *testing.T) {
		renamed := *updated
		renamed.TypeName = ".example.v1.Format"

		c := findings.NewContainer()
		require.NoError(t, NewFieldComparator(original, &renamed, c).Compare())

		f := singleFinding(t, c)
		assert.Equal(t, findings.FieldTypeChange, f.Category)
		assert.Equal(t, "Type of an existing field `format` is changed from `.example.v1.BookFormat` to `.example.v1.Format`.", f.Message)
	})

	t.Run("version promotion is tolerated", func(t *testing.T) {
		promoted := *updated
		promoted.TypeName = ".example.v1beta1.BookFormat"
		promoted.APIVersion = "v1beta1"

		c := findings.NewContainer()
		require.NoError(t, NewFieldComparator(original, &promoted, c).Compare())
		assert.Zero(t, c.Len())
	})

	t.Run("rename without version segment is breaking", func(t *testing.T) {
		unversioned := *original
		unversioned.TypeName = ".example.BookFormat"
		unversioned.APIVersion = ""
		renamed := *updated
		renamed.TypeName = ".example.Format"
		renamed.APIVersion = ""

		c := findings.NewContainer()
		require.NoError(t, NewFieldComparator(&unversioned, &renamed, c).Compare())
		assert.Equal(t, 1, c.Len())
	})
}

func TestFieldComparator_MapChanges(t *testing.T) {
	mapField := func() *schema.Field {
		f := stringField("reviews")
		f.ProtoType = "TYPE_MESSAGE"
		f.TypeName = ".example.v1.Book.ReviewsEntry"
		f.IsMapType = true
		f.MapEntry = &schema.MapEntry{KeyType: "string", ValueType: "string"}
		f.APIVersion = "v1"
		return f
	}

	t.Run("map to message", func(t *testing.T) {
		original := mapField()
		updated := stringField("reviews")
		updated.ProtoType = "TYPE_MESSAGE"
		updated.TypeName = ".example.v1.Book.ReviewsEntry"
		updated.APIVersion = "v1"

		c := findings.NewContainer()
		require.NoError(t, NewFieldComparator(original, updated, c).Compare())

		f := singleFinding(t, c)
		assert.Equal(t, "Type of an existing field `reviews` is changed from a map to `.example.v1.Book.ReviewsEntry`.", f.Message)
	})

	t.Run("message to map", func(t *testing.T) {
		original := stringField("reviews")
		original.ProtoType = "TYPE_MESSAGE"
		original.TypeName = ".example.v1.Book.ReviewsEntry"
		original.APIVersion = "v1"
		updated := mapField()

		c := findings.NewContainer()
		require.NoError(t, NewFieldComparator(original, updated, c).Compare())

		f := singleFinding(t, c)
		assert.Equal(t, "Type of an existing field `reviews` is changed from `.example.v1.Book.ReviewsEntry` to a map.", f.Message)
	})

	t.Run("entry value change", func(t *testing.T) {
		original := mapField()
		updated := mapField()
		updated.MapEntry = &schema.MapEntry{KeyType: "string", ValueType: "int32"}

		c := findings.NewContainer()
		require.NoError(t, NewFieldComparator(original, updated, c).Compare())

		f := singleFinding(t, c)
		assert.Equal(t, findings.FieldTypeChange, f.Category)
		assert.Equal(t, "Type of an existing field `reviews` is changed from `map<string, string>` to `map<string, int32>`.", f.Message)
	})

	t.Run("entry value version promotion is tolerated", func(t *testing.T) {
		original := mapField()
		original.MapEntry = &schema.MapEntry{KeyType: "string", ValueType: ".example.v1.Review"}
		updated := mapField()
		updated.TypeName = ".example.v1beta1.Book.ReviewsEntry"
		updated.APIVersion = "v1beta1"
		updated.MapEntry = &schema.MapEntry{KeyType: "string", ValueType: ".example.v1beta1.Review"}

		c := findings.NewContainer()
		require.NoError(t, NewFieldComparator(original, updated, c).Compare())
		assert.Zero(t, c.Len())
	})
}

func TestFieldComparator_Oneof(t *testing.T) {
	t.Run("moved out", func(t *testing.T) {
		original := stringField("isbn")
		original.OneofName = "identifier"
		updated := stringField("isbn")

		c := findings.NewContainer()
		require.NoError(t, NewFieldComparator(original, updated, c).Compare())

		f := singleFinding(t, c)
		assert.Equal(t, findings.FieldOneofRemoval, f.Category)
		assert.Equal(t, findings.ChangeTypeMajor, f.ChangeType)
		assert.Equal(t, "An existing field `isbn` is moved out of One-of.", f.Message)
	})

	t.Run("moved in", func(t *testing.T) {
		original := stringField("isbn")
		updated := stringField("isbn")
		updated.OneofName = "identifier"

		c := findings.NewContainer()
		require.NoError(t, NewFieldComparator(original, updated, c).Compare())

		f := singleFinding(t, c)
		assert.Equal(t, findings.FieldOneofAddition, f.Category)
		assert.Equal(t, "An existing field `isbn` is moved into One-of.", f.Message)
	})

	t.Run("proto3 optional dropped", func(t *testing.T) {
		original := stringField("edition")
		original.OneofName = "_edition"
		original.Proto3Optional = true
		updated := stringField("edition")
		updated.OneofName = "_edition"

		c := findings.NewContainer()
		require.NoError(t, NewFieldComparator(original, updated, c).Compare())

		f := singleFinding(t, c)
		assert.Equal(t, findings.FieldProto3OptionalChange, f.Category)
		assert.Equal(t, findings.ChangeTypeMajor, f.ChangeType)
		assert.Equal(t, "Proto3 optional state of an existing field `edition` is changed to required.", f.Message)
	})

	t.Run("proto3 optional gained", func(t *testing.T) {
		original := stringField("edition")
		original.OneofName = "_edition"
		updated := stringField("edition")
		updated.OneofName = "_edition"
		updated.Proto3Optional = true

		c := findings.NewContainer()
		require.NoError(t, NewFieldComparator(original, updated, c).Compare())

		f := singleFinding(t, c)
		assert.Equal(t, findings.FieldProto3OptionalChange, f.Category)
		assert.Equal(t, findings.ChangeTypeMinor, f.ChangeType)
		assert.Equal(t, "An existing field `edition` is changed to proto3 optional.", f.Message)
	})
}

func bookResource() *annotations.ResourceDescriptor {
	return &annotations.ResourceDescriptor{
		Type:    "library.googleapis.com/Book",
		Pattern: []string{"shelves/{shelf}/books/{book}"},
	}
}

func shelfResource() *annotations.ResourceDescriptor {
	return &annotations.ResourceDescriptor{
		Type:    "library.googleapis.com/Shelf",
		Pattern: []string{"shelves/{shelf}"},
	}
}

func libraryDatabase() *schema.ResourceDatabase {
	db := schema.NewResourceDatabase()
	db.RegisterResource(shelfResource())
	db.RegisterResource(bookResource())
	return db
}

func TestFieldComparator_ResourceReferenceAddition(t *testing.T) {
	t.Run("resolvable", func(t *testing.T) {
		original := stringField("name")
		updated := stringField("name")
		updated.ResourceReference = &annotations.ResourceReference{Type: "library.googleapis.com/Book"}
		updated.ResourceDatabase = libraryDatabase()

		c := findings.NewContainer()
		require.NoError(t, NewFieldComparator(original, updated, c).Compare())

		f := singleFinding(t, c)
		assert.Equal(t, findings.ResourceReferenceAddition, f.Category)
		assert.Equal(t, findings.ChangeTypeMinor, f.ChangeType)
		assert.Equal(t, "A resource reference option is added to the field `name`.", f.Message)
	})

	t.Run("unresolvable", func(t *testing.T) {
		original := stringField("name")
		updated := stringField("name")
		updated.ResourceReference = &annotations.ResourceReference{Type: "library.googleapis.com/Borrower"}
		updated.ResourceDatabase = libraryDatabase()

		c := findings.NewContainer()
		require.NoError(t, NewFieldComparator(original, updated, c).Compare())

		f := singleFinding(t, c)
		assert.Equal(t, findings.ResourceReferenceAddition, f.Category)
		assert.Equal(t, findings.ChangeTypeMajor, f.ChangeType)
		assert.Equal(t, "A resource reference option is added to the field `name`, but it is not defined anywhere", f.Message)
	})
}

func TestFieldComparator_ResourceReferenceRemoval(t *testing.T) {
	t.Run("moved to message resource", func(t *testing.T) {
		original := stringField("name")
		original.ResourceReference = &annotations.ResourceReference{Type: "library.googleapis.com/Book"}
		original.ResourceDatabase = libraryDatabase()
		updated := stringField("name")
		updated.MessageResource = bookResource()

		c := findings.NewContainer()
		require.NoError(t, NewFieldComparator(original, updated, c).Compare())

		f := singleFinding(t, c)
		assert.Equal(t, findings.ResourceReferenceRemoval, f.Category)
		assert.Equal(t, findings.ChangeTypeMinor, f.ChangeType)
		assert.Equal(t, "A resource reference option of the field `name` is removed, but added back to the message options.", f.Message)
	})

	t.Run("child type moved to parent message resource", func(t *testing.T) {
		original := stringField("parent")
		original.ResourceReference = &annotations.ResourceReference{ChildType: "library.googleapis.com/Book"}
		original.ResourceDatabase = libraryDatabase()
		updated := stringField("parent")
		updated.MessageResource = shelfResource()

		c := findings.NewContainer()
		require.NoError(t, NewFieldComparator(original, updated, c).Compare())

		f := singleFinding(t, c)
		assert.Equal(t, findings.ChangeTypeMinor, f.ChangeType)
	})

	t.Run("plain removal is breaking", func(t *testing.T) {
		original := stringField("name")
		original.ResourceReference = &annotations.ResourceReference{Type: "library.googleapis.com/Book"}
		original.ResourceDatabase = libraryDatabase()
		updated := stringField("name")

		c := findings.NewContainer()
		require.NoError(t, NewFieldComparator(original, updated, c).Compare())

		f := singleFinding(t, c)
		assert.Equal(t, findings.ResourceReferenceRemoval, f.Category)
		assert.Equal(t, findings.ChangeTypeMajor, f.ChangeType)
		assert.Equal(t, "A resource reference option of the field `name` is removed.", f.Message)
	})
}

func TestFieldComparator_ResourceReferenceChange(t *testing.T) {
	t.Run("type change", func(t *testing.T) {
		original := stringField("name")
		original.ResourceReference = &annotations.ResourceReference{Type: "library.googleapis.com/Book"}
		updated := stringField("name")
		updated.ResourceReference = &annotations.ResourceReference{Type: "library.googleapis.com/Shelf"}

		c := findings.NewContainer()
		require.NoError(t, NewFieldComparator(original, updated, c).Compare())

		f := singleFinding(t, c)
		assert.Equal(t, findings.ResourceReferenceChange, f.Category)
		assert.Equal(t, findings.ChangeTypeMajor, f.ChangeType)
		assert.Equal(t, "The type of resource reference option of the field `name` is changed from `library.googleapis.com/Book` to `library.googleapis.com/Shelf`.", f.Message)
	})

	t.Run("flip resolving to identical resource", func(t *testing.T) {
		original := stringField("parent")
		original.ResourceReference = &annotations.ResourceReference{ChildType: "library.googleapis.com/Book"}
		original.ResourceDatabase = libraryDatabase()
		updated := stringField("parent")
		updated.ResourceReference = &annotations.ResourceReference{Type: "library.googleapis.com/Shelf"}

		c := findings.NewContainer()
		require.NoError(t, NewFieldComparator(original, updated, c).Compare())
		assert.Zero(t, c.Len())
	})

	t.Run("flip with no common resource", func(t *testing.T) {
		original := stringField("parent")
		original.ResourceReference = &annotations.ResourceReference{Type: "library.googleapis.com/Shelf"}
		updated := stringField("parent")
		updated.ResourceReference = &annotations.ResourceReference{ChildType: "library.googleapis.com/Borrower"}
		updated.ResourceDatabase = libraryDatabase()

		c := findings.NewContainer()
		require.NoError(t, NewFieldComparator(original, updated, c).Compare())

		f := singleFinding(t, c)
		assert.Equal(t, findings.ResourceReferenceChange, f.Category)
		assert.Equal(t, "The child_type `library.googleapis.com/Borrower` and type `library.googleapis.com/Shelf` of resource reference option in field `parent` cannot be resolved to the identical resource.", f.Message)
	})
}

func TestFieldComparator_Idempotent(t *testing.T) {
	original := stringField("page_count")
	original.ProtoType = "TYPE_INT32"
	updated := stringField("page_count")

	first := findings.NewContainer()
	second := findings.NewContainer()
	require.NoError(t, NewFieldComparator(original, updated, first).Compare())
	require.NoError(t, NewFieldComparator(original, updated, second).Compare())
	assert.Equal(t, first.All(), second.All())
}

func TestFieldComparator_MalformedResourceReference(t *testing.T) {
	original := stringField("name")
	original.ResourceReference = &annotations.ResourceReference{}
	updated := stringField("name")

	err := NewFieldComparator(original, updated, findings.NewContainer()).Compare()
	var malformed *MalformedResourceReferenceError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, "name", malformed.Field)
}
