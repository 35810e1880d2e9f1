package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Abdullah-Asgher/JobMatchAI/internal/config"
)

const sampleResume = `John Smith
john.smith@example.com | +44 7700 900123 | linkedin.com/in/johnsmith

Professional Summary
Software engineer with 5 years of experience building backend services.

Experience
Senior Developer, Acme Ltd, 2020 - present
Backend Developer, Beta Inc, 2018 - 2020

Education
BSc Computer Science, University of Leeds, 2018

Skills
Python, SQL, Docker, AWS, Leadership
`

func newTestBuilder() *Builder {
	cfg := config.DefaultConfig()
	return NewBuilder(cfg.Profile)
}

// TestBuildFullProfile 验证完整简历的画像构建
func TestBuildFullProfile(t *testing.T) {
	b := newTestBuilder()
	p := b.Build(sampleResume)

	require.NotNil(t, p)
	assert.False(t, p.IsEmpty())

	// 技能词表命中
	assert.True(t, p.HasSkill("python"))
	assert.True(t, p.HasSkill("sql"))
	assert.True(t, p.HasSkill("docker"))
	assert.True(t, p.HasSkill("aws"))
	assert.True(t, p.HasSkill("leadership"))
	assert.False(t, p.HasSkill("kubernetes"))

	// 显式年限写法优先
	assert.Equal(t, 5, p.ExperienceYears)

	// 章节标志
	assert.True(t, p.HasContact)
	assert.True(t, p.HasExperience)
	assert.True(t, p.HasEducation)
	assert.True(t, p.HasSkills)

	assert.Greater(t, p.WordCount, 20)
}

// TestBuildEmptyText 验证空文本得到零值画像
func TestBuildEmptyText(t *testing.T) {
	b := newTestBuilder()

	for _, text := range []string{"", "   ", "\n\n\t"} {
		p := b.Build(text)
		require.NotNil(t, p)
		assert.True(t, p.IsEmpty())
		assert.Empty(t, p.Skills)
		assert.Zero(t, p.ExperienceYears)
		assert.False(t, p.HasContact)
	}
}

// TestBuildDeterministic 验证同一文本构建结果一致
func TestBuildDeterministic(t *testing.T) {
	b := newTestBuilder()
	p1 := b.Build(sampleResume)
	p2 := b.Build(sampleResume)
	assert.Equal(t, p1, p2)
}

// TestExtractExperienceYearsFromDateRanges 验证无显式写法时按任职区间累加
func TestExtractExperienceYearsFromDateRanges(t *testing.T) {
	text := `Experience
Developer at Acme, 2018 - 2021
Engineer at Beta, 2021 - 2023`

	years := ExtractExperienceYears(text)
	// (2021-2018) + (2023-2021) = 5
	assert.Equal(t, 5, years)
}

// TestExtractExperienceYearsNoSignal 验证无任何信号时返回0
func TestExtractExperienceYearsNoSignal(t *testing.T) {
	assert.Zero(t, ExtractExperienceYears("keen graduate looking for a first role"))
}

// TestExtractExperienceYearsCapped 验证异常大的年限被截断
func TestExtractExperienceYearsCapped(t *testing.T) {
	assert.Equal(t, 60, ExtractExperienceYears("100 years of experience"))
}

// TestSkillWordBoundary 验证短技能词不会误命中长单词
func TestSkillWordBoundary(t *testing.T) {
	b := NewBuilder(config.ProfileConfig{SkillVocabulary: []string{"go", "ai"}})

	p := b.Build("I worked at Google on email infrastructure")
	assert.False(t, p.HasSkill("go"), "go 不应命中 Google")
	assert.False(t, p.HasSkill("ai"), "ai 不应命中 email")

	p = b.Build("Experienced Go developer with AI projects")
	assert.True(t, p.HasSkill("go"))
	assert.True(t, p.HasSkill("ai"))
}

// TestSymbolSkillsMatchAsSubstring 验证带符号的技能词按子串匹配
func TestSymbolSkillsMatchAsSubstring(t *testing.T) {
	b := NewBuilder(config.ProfileConfig{SkillVocabulary: []string{"c++", "node.js"}})

	p := b.Build("Strong C++ and Node.js background")
	assert.True(t, p.HasSkill("c++"))
	assert.True(t, p.HasSkill("node.js"))
}
