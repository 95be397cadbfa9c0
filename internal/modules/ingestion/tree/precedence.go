package tree

// Origin names where a field value came from.
type Origin string

const (
	FromMetadata     Origin = "metadata"
	FromOutline      Origin = "outline"
	FromChapterDoc   Origin = "chapter_document"
	FromFolderNumber Origin = "folder_number"
)

// Precedence lists, per field, the origins consulted highest first. The first
// non-empty (strings) or positive (ix) value wins. Fields not listed here are
// taken from a single origin: remaining course fields from metadata, and
// learning, question and answer fields from the chapter document.
var Precedence = map[string][]Origin{
	"course.title":    {FromMetadata, FromOutline},
	"course.slug":     {FromMetadata, FromOutline},
	"course.summary":  {FromMetadata, FromOutline},
	"course.language": {FromMetadata, FromOutline},

	"chapter.ix":      {FromChapterDoc, FromFolderNumber, FromOutline},
	"chapter.title":   {FromChapterDoc, FromOutline},
	"chapter.summary": {FromChapterDoc, FromOutline},

	"section.ix":      {FromChapterDoc, FromOutline},
	"section.title":   {FromChapterDoc, FromOutline},
	"section.summary": {FromChapterDoc, FromOutline},
}

func resolveString(field string, values map[Origin]string) string {
	for _, o := range Precedence[field] {
		if v, ok := values[o]; ok && v != "" {
			return v
		}
	}
	return ""
}

func resolveIx(field string, values map[Origin]int) int {
	for _, o := range Precedence[field] {
		if v, ok := values[o]; ok && v > 0 {
			return v
		}
	}
	return 0
}
