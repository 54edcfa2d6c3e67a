package types

// Entry 一条出题模板与对应的答题方法
type Entry struct {
	QuestionTemplate string `json:"question_template" validate:"required"`
	AnswerMethod     string `json:"answer_method" validate:"required"`
}

// Summary 段落重点
type Summary struct {
	MainPoints []string `json:"main_points"`
}

// QAPair 从文档中识别出的问答对
type QAPair struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// DocumentExtraction 从文档提取模板的结果
type DocumentExtraction struct {
	Pairs int      `json:"pairs"`          // 模型识别出的问答对数量
	Added []*Entry `json:"extracted_data"` // 本次新增的模板
}
