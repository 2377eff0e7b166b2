package schema

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"cloud.google.com/go/longrunning/autogen/longrunningpb"
	"google.golang.org/genproto/googleapis/api/annotations"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/descriptorpb"
)

// FileSet is the normalized view of one compiled schema tree. It exposes the
// messages, enums and services declared by the definition files (imported
// dependencies are indexed for resolution but not compared), together with
// the resource database built from every file in the set.
type FileSet struct {
	// DefinitionFiles are the files under comparison, i.e. the files of the
	// set that no other file imports, or the files selected by the package
	// prefix filter when one is given.
	DefinitionFiles []*File
	// MessagesMap, EnumsMap and ServicesMap index the definition files'
	// declarations. Messages and enums are keyed by fully qualified name with
	// a leading dot, services by simple name.
	MessagesMap map[string]*Message
	EnumsMap    map[string]*Enum
	ServicesMap map[string]*Service
	// ResourceDatabase indexes google.api.resource definitions across all
	// files of the set, dependencies included.
	ResourceDatabase *ResourceDatabase
	// PackagingOptions collects file-level packaging options (go_package,
	// java_package, ...) of the definition files: option name -> declared
	// values.
	PackagingOptions map[string]map[string]bool
}

// File is the view of one definition file in a set.
type File struct {
	Name       string
	Package    string
	APIVersion string
}

// APIVersion returns the version segment shared by the definition files, i.e.
// the first non-empty per-file version. Returns the empty string for
// unversioned sets.
func (fs *FileSet) APIVersion() string {
	for _, file := range fs.DefinitionFiles {
		if file.APIVersion != "" {
			return file.APIVersion
		}
	}
	return ""
}

// TopLevelMessages returns the messages declared at file scope. Nested
// messages remain in MessagesMap for reference resolution but are compared
// through their parents.
func (fs *FileSet) TopLevelMessages() map[string]*Message {
	out := make(map[string]*Message, len(fs.MessagesMap))
	for name, msg := range fs.MessagesMap {
		if !msg.Nested {
			out[name] = msg
		}
	}
	return out
}

// TopLevelEnums returns the enums declared at file scope.
func (fs *FileSet) TopLevelEnums() map[string]*Enum {
	out := make(map[string]*Enum, len(fs.EnumsMap))
	for name, enum := range fs.EnumsMap {
		if !enum.Nested {
			out[name] = enum
		}
	}
	return out
}

var apiVersionPattern = regexp.MustCompile(`^v\d+(p\d+)?((alpha|beta)\d*)?$`)

// ExtractAPIVersion returns the version segment of a proto file path or
// package, e.g. `v1` from `example/v1/foo.proto` or `v1beta1` from
// `example.v1beta1`. Returns the empty string when no segment matches.
func ExtractAPIVersion(path string) string {
	for _, segment := range strings.FieldsFunc(path, func(r rune) bool {
		return r == '/' || r == '.'
	}) {
		if apiVersionPattern.MatchString(segment) {
			return segment
		}
	}
	return ""
}

// NewFileSet wraps a compiled FileDescriptorSet into typed views. When
// packagePrefixes is non-empty only files whose package matches one of the
// prefixes are treated as definition files; otherwise every file that no
// other file in the set imports is a definition file.
func NewFileSet(set *descriptorpb.FileDescriptorSet, packagePrefixes ...string) (*FileSet, error) {
	if set == nil {
		return nil, fmt.Errorf("file descriptor set is nil")
	}

	fs := &FileSet{
		MessagesMap:      make(map[string]*Message),
		EnumsMap:         make(map[string]*Enum),
		ServicesMap:      make(map[string]*Service),
		ResourceDatabase: NewResourceDatabase(),
		PackagingOptions: make(map[string]map[string]bool),
	}

	// The resource database spans the whole set so that references can be
	// resolved through definitions declared in imported files.
	for _, file := range set.GetFile() {
		registerResources(fs.ResourceDatabase, file)
	}

	imported := make(map[string]bool)
	for _, file := range set.GetFile() {
		for _, dep := range file.GetDependency() {
			imported[dep] = true
		}
	}

	for _, file := range set.GetFile() {
		if !isDefinitionFile(file, imported, packagePrefixes) {
			continue
		}
		fs.addDefinitionFile(file)
	}
	return fs, nil
}

func isDefinitionFile(file *descriptorpb.FileDescriptorProto, imported map[string]bool, prefixes []string) bool {
	if len(prefixes) > 0 {
		for _, prefix := range prefixes {
			if strings.HasPrefix(file.GetPackage(), prefix) {
				return true
			}
		}
		return false
	}
	return !imported[file.GetName()]
}

func registerResources(db *ResourceDatabase, file *descriptorpb.FileDescriptorProto) {
	if opts := file.GetOptions(); opts != nil {
		defs := proto.GetExtension(opts, annotations.E_ResourceDefinition).([]*annotations.ResourceDescriptor)
		for _, def := range defs {
			db.RegisterResource(def)
		}
	}
	var walk func(msg *descriptorpb.DescriptorProto)
	walk = func(msg *descriptorpb.DescriptorProto) {
		if opts := msg.GetOptions(); opts != nil {
			if res, ok := proto.GetExtension(opts, annotations.E_Resource).(*annotations.ResourceDescriptor); ok && res != nil {
				db.RegisterResource(res)
			}
		}
		for _, nested := range msg.GetNestedType() {
			walk(nested)
		}
	}
	for _, msg := range file.GetMessageType() {
		walk(msg)
	}
}

func (fs *FileSet) addDefinitionFile(file *descriptorpb.FileDescriptorProto) {
	version := ExtractAPIVersion(file.GetName())
	if version == "" {
		version = ExtractAPIVersion(file.GetPackage())
	}
	fs.DefinitionFiles = append(fs.DefinitionFiles, &File{
		Name:       file.GetName(),
		Package:    file.GetPackage(),
		APIVersion: version,
	})
	fs.collectPackagingOptions(file)

	locations := newSourceLocations(file.GetSourceCodeInfo())
	b := &fileBuilder{
		fileSet:   fs,
		fileName:  file.GetName(),
		version:   version,
		locations: locations,
	}

	prefix := "." + file.GetPackage()
	for i, msg := range file.GetMessageType() {
		b.addMessage(msg, prefix, pathKey(4, int32(i)))
	}
	for i, enum := range file.GetEnumType() {
		b.addEnum(enum, prefix, pathKey(5, int32(i)))
	}
	for i, svc := range file.GetService() {
		b.addService(svc, pathKey(6, int32(i)))
	}
}

// packagingOptionAccessors maps the tracked packaging option names to their
// accessor on FileOptions.
var packagingOptionAccessors = map[string]func(*descriptorpb.FileOptions) string{
	"go_package":           (*descriptorpb.FileOptions).GetGoPackage,
	"java_package":         (*descriptorpb.FileOptions).GetJavaPackage,
	"java_outer_classname": (*descriptorpb.FileOptions).GetJavaOuterClassname,
	"csharp_namespace":     (*descriptorpb.FileOptions).GetCsharpNamespace,
	"php_namespace":        (*descriptorpb.FileOptions).GetPhpNamespace,
	"ruby_package":         (*descriptorpb.FileOptions).GetRubyPackage,
	"objc_class_prefix":    (*descriptorpb.FileOptions).GetObjcClassPrefix,
	"swift_prefix":         (*descriptorpb.FileOptions).GetSwiftPrefix,
}

func (fs *FileSet) collectPackagingOptions(file *descriptorpb.FileDescriptorProto) {
	opts := file.GetOptions()
	if opts == nil {
		return
	}
	for name, get := range packagingOptionAccessors {
		value := get(opts)
		if value == "" {
			continue
		}
		if fs.PackagingOptions[name] == nil {
			fs.PackagingOptions[name] = make(map[string]bool)
		}
		fs.PackagingOptions[name][value] = true
	}
}

// fileBuilder walks one FileDescriptorProto and populates the owning file
// set's maps with located views.
type fileBuilder struct {
	fileSet   *FileSet
	fileName  string
	version   string
	locations sourceLocations
}

func (b *fileBuilder) addMessage(msg *descriptorpb.DescriptorProto, prefix, path string) {
	fullName := prefix + "." + msg.GetName()
	view := &Message{
		Name:             msg.GetName(),
		FullName:         fullName,
		Fields:           make(map[int32]*Field),
		NestedMessages:   make(map[string]*Message),
		NestedEnums:      make(map[string]*Enum),
		Oneofs:           make(map[string]bool),
		ResourceDatabase: b.fileSet.ResourceDatabase,
		APIVersion:       b.version,
		ProtoFileName:    b.fileName,
		SourceCodeLine:   b.locations.line(path),
	}
	if opts := msg.GetOptions(); opts != nil {
		if res, ok := proto.GetExtension(opts, annotations.E_Resource).(*annotations.ResourceDescriptor); ok && res != nil {
			view.Resource = res
		}
	}
	for _, oneof := range msg.GetOneofDecl() {
		view.Oneofs[oneof.GetName()] = true
	}

	// Map entry messages are compiler-synthesized; they feed the map fields
	// of this message and are excluded from the nested message map.
	mapEntries := make(map[string]*descriptorpb.DescriptorProto)
	for i, nested := range msg.GetNestedType() {
		if nested.GetOptions().GetMapEntry() {
			mapEntries[fullName+"."+nested.GetName()] = nested
			continue
		}
		b.addNestedMessage(view, nested, fullName, path+"."+pathKey(3, int32(i)))
	}
	for i, enum := range msg.GetEnumType() {
		b.addNestedEnum(view, enum, fullName, path+"."+pathKey(4, int32(i)))
	}
	for i, field := range msg.GetField() {
		view.Fields[field.GetNumber()] = b.buildField(field, msg, view, mapEntries, path+"."+pathKey(2, int32(i)))
	}
	b.fileSet.MessagesMap[fullName] = view
}

func (b *fileBuilder) addNestedMessage(parent *Message, msg *descriptorpb.DescriptorProto, prefix, path string) {
	b.addMessage(msg, prefix, path)
	child := b.fileSet.MessagesMap[prefix+"."+msg.GetName()]
	child.Nested = true
	parent.NestedMessages[msg.GetName()] = child
}

func (b *fileBuilder) addEnum(enum *descriptorpb.EnumDescriptorProto, prefix, path string) {
	fullName := prefix + "." + enum.GetName()
	view := &Enum{
		Name:           enum.GetName(),
		FullName:       fullName,
		Values:         make(map[int32]*EnumValue),
		APIVersion:     b.version,
		ProtoFileName:  b.fileName,
		SourceCodeLine: b.locations.line(path),
	}
	for i, value := range enum.GetValue() {
		view.Values[value.GetNumber()] = &EnumValue{
			Name:           value.GetName(),
			Number:         value.GetNumber(),
			ProtoFileName:  b.fileName,
			SourceCodeLine: b.locations.line(path + "." + pathKey(2, int32(i))),
		}
	}
	b.fileSet.EnumsMap[fullName] = view
}

func (b *fileBuilder) addNestedEnum(parent *Message, enum *descriptorpb.EnumDescriptorProto, prefix, path string) {
	b.addEnum(enum, prefix, path)
	child := b.fileSet.EnumsMap[prefix+"."+enum.GetName()]
	child.Nested = true
	parent.NestedEnums[enum.GetName()] = child
}

func (b *fileBuilder) buildField(field *descriptorpb.FieldDescriptorProto, parent *descriptorpb.DescriptorProto, parentView *Message, mapEntries map[string]*descriptorpb.DescriptorProto, path string) *Field {
	view := &Field{
		Name:           field.GetName(),
		Number:         field.GetNumber(),
		Repeated:       field.GetLabel() == descriptorpb.FieldDescriptorProto_LABEL_REPEATED,
		ProtoType:      field.GetType().String(),
		TypeName:       field.GetTypeName(),
		Proto3Optional: field.GetProto3Optional(),
		APIVersion:     b.version,

		MessageResource:  parentView.Resource,
		ResourceDatabase: b.fileSet.ResourceDatabase,

		ProtoFileName:  b.fileName,
		SourceCodeLine: b.locations.line(path),
	}
	if field.OneofIndex != nil {
		decls := parent.GetOneofDecl()
		if idx := int(field.GetOneofIndex()); idx < len(decls) {
			view.OneofName = decls[idx].GetName()
		}
	}
	if opts := field.GetOptions(); opts != nil {
		behaviors := proto.GetExtension(opts, annotations.E_FieldBehavior).([]annotations.FieldBehavior)
		for _, behavior := range behaviors {
			if behavior == annotations.FieldBehavior_REQUIRED {
				view.Required = true
			}
		}
		if ref, ok := proto.GetExtension(opts, annotations.E_ResourceReference).(*annotations.ResourceReference); ok && ref != nil {
			view.ResourceReference = ref
		}
	}
	if entry, ok := mapEntries[view.TypeName]; ok {
		view.IsMapType = true
		view.MapEntry = &MapEntry{
			KeyType:   entryTypeName(entry.GetField()[0]),
			ValueType: entryTypeName(entry.GetField()[1]),
		}
	}
	return view
}

// entryTypeName renders a map entry key or value type: scalar types use the
// proto spelling, message and enum types the fully qualified name.
func entryTypeName(field *descriptorpb.FieldDescriptorProto) string {
	if name := field.GetTypeName(); name != "" {
		return name
	}
	return strings.ToLower(strings.TrimPrefix(field.GetType().String(), "TYPE_"))
}

func (b *fileBuilder) addService(svc *descriptorpb.ServiceDescriptorProto, path string) {
	view := &Service{
		Name:           svc.GetName(),
		Methods:        make(map[string]*Method),
		MessagesMap:    b.fileSet.MessagesMap,
		APIVersion:     b.version,
		ProtoFileName:  b.fileName,
		SourceCodeLine: b.locations.line(path),
	}
	if opts := svc.GetOptions(); opts != nil {
		view.Host = proto.GetExtension(opts, annotations.E_DefaultHost).(string)
		if scopes := proto.GetExtension(opts, annotations.E_OauthScopes).(string); scopes != "" {
			for _, scope := range strings.Split(scopes, ",") {
				view.OAuthScopes = append(view.OAuthScopes, strings.TrimSpace(scope))
			}
		}
	}
	for i, method := range svc.GetMethod() {
		view.Methods[method.GetName()] = b.buildMethod(method, path+"."+pathKey(2, int32(i)))
	}
	b.fileSet.ServicesMap[svc.GetName()] = view
}

func (b *fileBuilder) buildMethod(method *descriptorpb.MethodDescriptorProto, path string) *Method {
	view := &Method{
		Name:            method.GetName(),
		InputType:       method.GetInputType(),
		OutputType:      method.GetOutputType(),
		ClientStreaming: method.GetClientStreaming(),
		ServerStreaming: method.GetServerStreaming(),
		MessagesMap:     b.fileSet.MessagesMap,
		APIVersion:      b.version,
		ProtoFileName:   b.fileName,
		SourceCodeLine:  b.locations.line(path),
	}
	if opts := method.GetOptions(); opts != nil {
		view.MethodSignatures = proto.GetExtension(opts, annotations.E_MethodSignature).([]string)
		if info, ok := proto.GetExtension(opts, longrunningpb.E_OperationInfo).(*longrunningpb.OperationInfo); ok && info != nil {
			view.LRO = info
		}
		if rule, ok := proto.GetExtension(opts, annotations.E_Http).(*annotations.HttpRule); ok && rule != nil {
			view.HTTPAnnotation = flattenHTTPRule(rule)
		}
	}
	return view
}

func flattenHTTPRule(rule *annotations.HttpRule) *HTTPAnnotation {
	out := &HTTPAnnotation{Body: rule.GetBody()}
	switch pattern := rule.GetPattern().(type) {
	case *annotations.HttpRule_Get:
		out.Verb, out.URI = "get", pattern.Get
	case *annotations.HttpRule_Put:
		out.Verb, out.URI = "put", pattern.Put
	case *annotations.HttpRule_Post:
		out.Verb, out.URI = "post", pattern.Post
	case *annotations.HttpRule_Delete:
		out.Verb, out.URI = "delete", pattern.Delete
	case *annotations.HttpRule_Patch:
		out.Verb, out.URI = "patch", pattern.Patch
	case *annotations.HttpRule_Custom:
		out.Verb, out.URI = pattern.Custom.GetKind(), pattern.Custom.GetPath()
	}
	return out
}

// sourceLocations maps descriptor paths (dot-joined SourceCodeInfo paths) to
// 1-based source lines.
type sourceLocations map[string]int

func newSourceLocations(info *descriptorpb.SourceCodeInfo) sourceLocations {
	locations := make(sourceLocations)
	for _, loc := range info.GetLocation() {
		span := loc.GetSpan()
		if len(span) < 3 {
			continue
		}
		parts := make([]string, len(loc.GetPath()))
		for i, p := range loc.GetPath() {
			parts[i] = strconv.Itoa(int(p))
		}
		locations[strings.Join(parts, ".")] = int(span[0]) + 1
	}
	return locations
}

func (s sourceLocations) line(path string) int {
	return s[path]
}

func pathKey(parts ...int32) string {
	strs := make([]string, len(parts))
	for i, p := range parts {
		strs[i] = strconv.Itoa(int(p))
	}
	return strings.Join(strs, ".")
}
