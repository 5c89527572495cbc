package data

// DefaultRegistry holds the wiki's tables in creation order: users first,
// since revisions reference both users and pages.
var DefaultRegistry = NewRegistry(UserSchema, PageSchema, RevisionSchema)
