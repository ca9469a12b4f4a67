package faults

// userMessages holds one fixed display triple per taxonomy member. Strings
// are static; numeric context travels separately in Context.
var userMessages = map[Type]UserMessage{
	InsufficientBalance: {
		Title:   "Số dư không đủ",
		Message: "Số dư SOV của bạn không đủ để thực hiện giao dịch này.",
		Action:  "Vui lòng nạp thêm token hoặc giảm số lượng giao dịch.",
	},
	DatabaseConnection: {
		Title:   "Lỗi kết nối cơ sở dữ liệu",
		Message: "Không thể kết nối đến hệ thống lưu trữ. Giao dịch của bạn chưa được thực hiện.",
		Action:  "Vui lòng thử lại sau ít phút. Nếu lỗi tiếp diễn, hãy liên hệ hỗ trợ.",
	},
	BlockchainFailure: {
		Title:   "Lỗi mạng blockchain",
		Message: "Mạng blockchain đang gặp sự cố, giao dịch không thể hoàn tất.",
		Action:  "Hệ thống sẽ tự động thử lại. Vui lòng chờ trong giây lát.",
	},
	ValidationError: {
		Title:   "Dữ liệu không hợp lệ",
		Message: "Thông tin giao dịch bạn nhập không hợp lệ.",
		Action:  "Vui lòng kiểm tra lại thông tin và thử lại.",
	},
	ConcurrentModification: {
		Title:   "Xung đột giao dịch",
		Message: "Ví của bạn vừa được cập nhật bởi một giao dịch khác.",
		Action:  "Vui lòng thử lại thao tác.",
	},
	ServiceUnavailable: {
		Title:   "Dịch vụ tạm ngưng",
		Message: "Dịch vụ hiện không khả dụng, vui lòng quay lại sau.",
		Action:  "Thử lại sau ít phút hoặc liên hệ hỗ trợ nếu cần gấp.",
	},
	Timeout: {
		Title:   "Hết thời gian chờ",
		Message: "Giao dịch mất quá nhiều thời gian để xử lý.",
		Action:  "Vui lòng kiểm tra kết nối mạng và thử lại.",
	},
	RollbackFailed: {
		Title:   "Lỗi hoàn tác giao dịch",
		Message: "Không thể hoàn tác giao dịch bị lỗi. Số dư của bạn có thể chưa chính xác.",
		Action:  "Vui lòng liên hệ hỗ trợ ngay để được kiểm tra số dư.",
	},
	NetworkError: {
		Title:   "Lỗi kết nối mạng",
		Message: "Không thể kết nối đến máy chủ.",
		Action:  "Vui lòng kiểm tra kết nối internet và thử lại.",
	},
	Unknown: {
		Title:   "Lỗi không xác định",
		Message: "Đã xảy ra lỗi không mong muốn trong quá trình xử lý.",
		Action:  "Vui lòng thử lại. Nếu lỗi tiếp diễn, hãy liên hệ hỗ trợ.",
	},
}

var severities = map[Type]Severity{
	DatabaseConnection:     SeverityCritical,
	RollbackFailed:         SeverityCritical,
	BlockchainFailure:      SeverityHigh,
	ServiceUnavailable:     SeverityHigh,
	Timeout:                SeverityHigh,
	Unknown:                SeverityHigh,
	InsufficientBalance:    SeverityMedium,
	ConcurrentModification: SeverityMedium,
	NetworkError:           SeverityMedium,
	ValidationError:        SeverityLow,
}

// MessageFor returns the display triple for a taxonomy member, falling back
// to the Unknown entry for unrecognized types.
func MessageFor(t Type) UserMessage {
	if m, ok := userMessages[t]; ok {
		return m
	}
	return userMessages[Unknown]
}

// SeverityFor returns the fixed severity for a taxonomy member.
func SeverityFor(t Type) Severity {
	if s, ok := severities[t]; ok {
		return s
	}
	return SeverityHigh
}
