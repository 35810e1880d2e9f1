package ats

// feedbackRule 单条反馈规则：子分达到阈值时产出优势，否则产出改进建议
type feedbackRule struct {
	category    string
	threshold   float64
	strength    string
	improvement string
}

// feedbackRules 反馈规则表。按固定顺序求值，输出顺序因此对同一输入稳定。
var feedbackRules = []feedbackRule{
	{
		category:    CategoryContact,
		threshold:   80,
		strength:    "Complete contact information provided",
		improvement: "Add missing contact info (email, phone, LinkedIn)",
	},
	{
		category:    CategoryFormatting,
		threshold:   75,
		strength:    "Good ATS-friendly formatting",
		improvement: "Simplify formatting - avoid tables, columns, and graphics",
	},
	{
		category:    CategoryKeywords,
		threshold:   72,
		strength:    "Strong keyword optimization",
		improvement: "Add more relevant keywords from job descriptions",
	},
	{
		category:    CategoryStructure,
		threshold:   80,
		strength:    "Well-structured resume with all key sections",
		improvement: "Add the standard sections: Experience, Education, Skills",
	},
	{
		category:    CategoryAchievements,
		threshold:   60,
		strength:    "Quantifiable achievements included",
		improvement: "Add quantifiable achievements (e.g., 'Increased sales by 30%', 'Managed team of 10')",
	},
	{
		category:    CategoryLength,
		threshold:   70,
		strength:    "Resume length is in the ideal range",
		improvement: "Adjust resume length - aim for roughly 300 to 800 words",
	},
}

// maxFeedbackItems 每个列表最多保留的条目数
const maxFeedbackItems = 5

// applyFeedbackRules 按规则表生成优势与改进建议列表
func applyFeedbackRules(breakdown map[string]float64) (strengths, improvements []string) {
	strengths = []string{}
	improvements = []string{}

	for _, rule := range feedbackRules {
		if breakdown[rule.category] >= rule.threshold {
			if len(strengths) < maxFeedbackItems {
				strengths = append(strengths, rule.strength)
			}
		} else {
			if len(improvements) < maxFeedbackItems {
				improvements = append(improvements, rule.improvement)
			}
		}
	}
	return strengths, improvements
}
