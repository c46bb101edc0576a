package db

import "strings"

// SkillDelimiter separates skill tags inside the stored skill column.
const SkillDelimiter = ","

// Admin represents a database admin record
type Admin struct {
	Login string
	ID    int64
}

// User represents a database auditor record.
// Skill holds a delimited list of skill tags; Num is the round-robin
// rotation counter and always stays inside the skill list index range.
type User struct {
	Login string
	ID    int64
	Skill string
	Num   int
}

// SkillList parses the stored skill column into an ordered list of tags.
// Blank tags are dropped, so "a,,b" and "a,b" are the same declaration.
func (u User) SkillList() []string {
	parts := strings.Split(u.Skill, SkillDelimiter)
	skills := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			skills = append(skills, s)
		}
	}
	return skills
}

// JoinSkills renders an ordered skill list back into the stored column form.
func JoinSkills(skills []string) string {
	return strings.Join(skills, SkillDelimiter)
}

// Task represents one open backlog row. Login is the support login and the
// primary key: at most one open task per support agent at a time.
type Task struct {
	Status      string
	Date        string
	Login       string
	Link        string
	Comment     string
	SkillSup    string
	Skill       string
	Output      string
	Appreciated int
	Autochecks  int
	Residue     int
	Priority    int
}
