package entity

// TxListResponse is the envelope of the Etherscan account txlist endpoint.
// Status "0" with message "No transactions found" is a valid empty result.
type TxListResponse struct {
	Status  string       `json:"status"`
	Message string       `json:"message"`
	Result  []ExplorerTx `json:"result"`
}

// ExplorerTx is one transaction row; all numeric fields arrive as strings.
type ExplorerTx struct {
	Hash            string `json:"hash"`
	From            string `json:"from"`
	To              string `json:"to"`
	Value           string `json:"value"`
	TimeStamp       string `json:"timeStamp"`
	FunctionName    string `json:"functionName"`
	MethodID        string `json:"methodId"`
	IsError         string `json:"isError"`
	TxReceiptStatus string `json:"txreceipt_status"`
}
