package graph

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	types "github.com/yungbote/coursetree/internal/domain"
	domainagg "github.com/yungbote/coursetree/internal/domain/aggregates"
	"github.com/yungbote/coursetree/internal/platform/logger"
	"github.com/yungbote/coursetree/internal/platform/neo4jdb"
)

// ChapterGraph is the flattened projection of one committed chapter.
type ChapterGraph struct {
	Course    map[string]any
	Chapter   map[string]any
	Sections  []map[string]any
	Learnings []map[string]any
	Questions []map[string]any
}

// BuildChapterGraph flattens a committed chapter. Rows must carry storage ids.
func BuildChapterGraph(course *types.Course, cw domainagg.ChapterWrite, syncedAt time.Time) (ChapterGraph, error) {
	var g ChapterGraph
	if course == nil || course.ID == uuid.Nil {
		return g, fmt.Errorf("course graph: missing course id")
	}
	if cw.Chapter == nil || cw.Chapter.ID == uuid.Nil {
		return g, fmt.Errorf("course graph: chapter not committed")
	}
	now := syncedAt.UTC().Format(time.RFC3339Nano)

	g.Course = map[string]any{
		"id":        course.ID.String(),
		"slug":      course.Slug,
		"title":     course.Title,
		"status":    course.Status,
		"version":   int64(course.Version),
		"synced_at": now,
	}
	g.Chapter = map[string]any{
		"id":        cw.Chapter.ID.String(),
		"ix":        int64(cw.Chapter.Ix),
		"title":     cw.Chapter.Title,
		"synced_at": now,
	}
	for _, sw := range cw.Sections {
		if sw.Section == nil || sw.Section.ID == uuid.Nil {
			continue
		}
		g.Sections = append(g.Sections, map[string]any{
			"id":             sw.Section.ID.String(),
			"parent_id":      cw.Chapter.ID.String(),
			"ix":             int64(sw.Section.Ix),
			"title":          sw.Section.Title,
			"learning_count": int64(len(sw.Learnings)),
			"synced_at":      now,
		})
		for _, lw := range sw.Learnings {
			if lw.Learning == nil || lw.Learning.ID == uuid.Nil {
				continue
			}
			g.Learnings = append(g.Learnings, map[string]any{
				"id":        lw.Learning.ID.String(),
				"parent_id": sw.Section.ID.String(),
				"ix":        int64(lw.Learning.Ix),
				"title":     lw.Learning.Title,
				"state":     lw.Learning.State,
				"synced_at": now,
			})
			for _, qw := range lw.Questions {
				if qw.Question == nil || qw.Question.ID == uuid.Nil {
					continue
				}
				g.Questions = append(g.Questions, map[string]any{
					"id":           qw.Question.ID.String(),
					"parent_id":    lw.Learning.ID.String(),
					"ix":           int64(qw.Question.Ix),
					"type":         qw.Question.Type,
					"difficulty":   qw.Question.Difficulty,
					"answer_count": int64(len(qw.Answers)),
					"synced_at":    now,
				})
			}
		}
	}
	return g, nil
}

// CourseGraph mirrors committed chapters into Neo4j.
type CourseGraph struct {
	client *neo4jdb.Client
	log    *logger.Logger
}

func NewCourseGraph(client *neo4jdb.Client, log *logger.Logger) *CourseGraph {
	return &CourseGraph{client: client, log: log.With("sink", "CourseGraph")}
}

// ProjectChapter replaces the chapter's subtree in the graph. A nil client is a no-op.
func (g *CourseGraph) ProjectChapter(ctx context.Context, course *types.Course, cw domainagg.ChapterWrite) error {
	if g == nil || g.client == nil || g.client.Driver == nil {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	proj, err := BuildChapterGraph(course, cw, time.Now())
	if err != nil {
		return err
	}

	session := g.client.Driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeWrite,
		DatabaseName: g.client.Database,
	})
	defer session.Close(ctx)

	for _, stmt := range []string{
		`CREATE CONSTRAINT course_id_unique IF NOT EXISTS FOR (c:Course) REQUIRE c.id IS UNIQUE`,
		`CREATE CONSTRAINT chapter_id_unique IF NOT EXISTS FOR (c:Chapter) REQUIRE c.id IS UNIQUE`,
	} {
		if res, err := session.Run(ctx, stmt, nil); err != nil {
			g.log.Warn("neo4j schema init failed (continuing)", "error", err)
		} else {
			_, _ = res.Consume(ctx)
		}
	}

	_, err = session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		steps := []struct {
			cypher string
			params map[string]any
		}{
			{`
MERGE (c:Course {id: $course.id})
SET c += $course
MERGE (ch:Chapter {id: $chapter.id})
SET ch += $chapter
MERGE (c)-[:HAS_CHAPTER]->(ch)
WITH ch
OPTIONAL MATCH (ch)-[:HAS_SECTION|HAS_LEARNING|HAS_QUESTION*1..3]->(d)
DETACH DELETE d
`, map[string]any{"course": proj.Course, "chapter": proj.Chapter}},
			{`
UNWIND $rows AS r
MATCH (p:Chapter {id: r.parent_id})
MERGE (s:Section {id: r.id})
SET s += r
MERGE (p)-[:HAS_SECTION]->(s)
`, map[string]any{"rows": proj.Sections}},
			{`
UNWIND $rows AS r
MATCH (p:Section {id: r.parent_id})
MERGE (l:Learning {id: r.id})
SET l += r
MERGE (p)-[:HAS_LEARNING]->(l)
`, map[string]any{"rows": proj.Learnings}},
			{`
UNWIND $rows AS r
MATCH (p:Learning {id: r.parent_id})
MERGE (q:Question {id: r.id})
SET q += r
MERGE (p)-[:HAS_QUESTION]->(q)
`, map[string]any{"rows": proj.Questions}},
		}
		for _, st := range steps {
			res, err := tx.Run(ctx, st.cypher, st.params)
			if err != nil {
				return nil, err
			}
			if _, err := res.Consume(ctx); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("neo4j chapter projection: %w", err)
	}
	g.log.Debug("chapter projected", "course_id", course.ID, "chapter", cw.Chapter.Ix)
	return nil
}
