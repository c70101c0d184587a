package models

// CategoryQuestion is a single rateable item in the questionnaire.
type CategoryQuestion struct {
	ID       string `json:"id"`
	Text     string `json:"text"`
	MaxScore int    `json:"max_score"`
}

// Category is a weighted group of survey questions plus a derived
// overall-satisfaction score. The overall question is never rated
// directly: its value is the sum of the category's input question
// ratings, and its maximum is the sum of their max scores.
type Category struct {
	ID              string             `json:"id"`
	Name            string             `json:"name"`
	WeightPercent   int                `json:"weight_percent"`
	Questions       []CategoryQuestion `json:"questions"`
	OverallQuestion CategoryQuestion   `json:"overall_question"`
}

// OverallQuestionID is the fixed question id used for the derived
// per-category overall score in responses and exports.
const OverallQuestionID = "overall"

// SurveyCategories is the compiled-in questionnaire. Category weights
// sum to 100 and are used for display only; scoring arithmetic works on
// raw points.
var SurveyCategories = []Category{
	{
		ID:            "service_admin",
		Name:          "Our Service Administration",
		WeightPercent: 15,
		Questions: []CategoryQuestion{
			{ID: "policy_docs", Text: "Issuance of Policy Documents / Billing", MaxScore: 5},
			{ID: "accuracy", Text: "Accuracy of Policy Document / Billing", MaxScore: 5},
			{ID: "premium_followup", Text: "Promptness in the follow-up on premium payment", MaxScore: 5},
		},
		OverallQuestion: CategoryQuestion{ID: OverallQuestionID, Text: "Overall Satisfaction of Service Administration", MaxScore: 15},
	},
	{
		ID:            "claims_admin",
		Name:          "Our Claims Administration",
		WeightPercent: 15,
		Questions: []CategoryQuestion{
			{ID: "speediness", Text: "Speediness of settlement of reimbursement of claims", MaxScore: 5},
			{ID: "accuracy", Text: "Accuracy of claims assessment", MaxScore: 5},
			{ID: "followup", Text: "Follow-up with employees with missing claim documents", MaxScore: 5},
		},
		OverallQuestion: CategoryQuestion{ID: OverallQuestionID, Text: "Overall satisfaction of Claim Administration", MaxScore: 15},
	},
	{
		ID:            "customer_service",
		Name:          "Customer Service",
		WeightPercent: 20,
		Questions: []CategoryQuestion{
			{ID: "professionalism", Text: "Professionalism of customer service personnel", MaxScore: 5},
			{ID: "knowledge", Text: "Products and claims knowledge of our customer service personnel", MaxScore: 5},
			{ID: "response", Text: "Response to queries", MaxScore: 5},
			{ID: "facilitation", Text: "Facilitation support with third party medical provider", MaxScore: 5},
		},
		OverallQuestion: CategoryQuestion{ID: OverallQuestionID, Text: "Overall satisfaction", MaxScore: 20},
	},
	{
		ID:            "presentation",
		Name:          "Presentation",
		WeightPercent: 10,
		Questions: []CategoryQuestion{
			{ID: "monthly_reports", Text: "Monthly reports (By 3rd week of the following month)", MaxScore: 5},
			{ID: "quarterly_reports", Text: "Quarterly reports (By 4th week of the following month)", MaxScore: 5},
		},
		OverallQuestion: CategoryQuestion{ID: OverallQuestionID, Text: "Overall satisfaction of Staff Presentation", MaxScore: 10},
	},
	{
		ID:            "staff_handbook",
		Name:          "Staff Communication Handbook",
		WeightPercent: 10,
		Questions: []CategoryQuestion{
			{ID: "comprehensiveness", Text: "Comprehensiveness of the Handbook", MaxScore: 5},
			{ID: "clarity", Text: "Clarity of the Staff Handbook", MaxScore: 5},
		},
		OverallQuestion: CategoryQuestion{ID: OverallQuestionID, Text: "Overall satisfaction of Staff Communication Handbook", MaxScore: 10},
	},
	{
		ID:            "renewal_review",
		Name:          "Renewal Review",
		WeightPercent: 30,
		Questions: []CategoryQuestion{
			{ID: "pre_renewal", Text: "Pre Renewal Meeting (August - September): Plan the renewal strategies, propose enhancements, claims review, provide non-binding renewal terms", MaxScore: 30},
			{ID: "remarketing", Text: "Remarketing Exercise (September to October): Obtain quotes from other insurers to benchmark against renewal terms, Present and recommend renewal proposal", MaxScore: 30},
		},
		OverallQuestion: CategoryQuestion{ID: OverallQuestionID, Text: "Overall satisfaction of Renewal Review", MaxScore: 60},
	},
}

// CategoryByID returns the catalog category with the given id, or nil.
func CategoryByID(id string) *Category {
	for i := range SurveyCategories {
		if SurveyCategories[i].ID == id {
			return &SurveyCategories[i]
		}
	}
	return nil
}
