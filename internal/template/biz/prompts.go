package biz

const (
	summarizeSystem = "你是一名文本分析师，负责提炼段落中的关键信息，并且只输出 JSON。"

	summarizeUser = `请梳理下面这段文字的重点。
输出一个 JSON 对象，只包含键 "main_points"，值为字符串数组，每个元素是一条重点。

段落：
%s`

	extractSystem = "你是一名教育内容分析师，擅长从具体题目中归纳出题模板和答题方法。输出必须是符合要求结构的 JSON。"

	extractUser = `根据下面的问题和答案，归纳一个通用的出题模板和对应的答题方法。
出题模板要足够抽象，可变部分用占位符表示，例如 [知识点]。
答题方法要写成可执行的步骤或策略。
输出 JSON 对象，包含 "question_template" 和 "answer_method" 两个键；无法归纳时两个值都返回 null。

问题：
%s

答案：
%s`

	pairsSystem = "你是一名严谨的教育内容分析师，从文档中提取结构化问答对，输出包含 \"qa_pairs\" 数组的 JSON 对象。"

	pairsUser = `下面是一份文档（类型：%s）。
请找出其中所有明确的“问题-答案”对，答案必须是文档中能直接回答该问题的内容。
输出 JSON 对象 {"qa_pairs": [{"question": "...", "answer": "..."}]}；找不到时返回 {"qa_pairs": []}。

文档内容：
` + "```text\n%s\n```"

	rewriteSystem = "你是一名写作助手，严格按照给定的答题方法改写答案，只输出改写后的答案正文。"

	rewriteUser = `请按照指定的答题方法，重新组织下面这道题的答案，要求清晰准确。
不要输出任何说明或 JSON。

问题：
%s

原始答案：
%s

答题方法：
%s`
)
