package services

import (
	"encoding/xml"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/moov-io/iso20022/pkg/common"
	"github.com/moov-io/iso20022/pkg/pacs_v08"
	"github.com/taxmint/backend/internal/models"
)

// PayoutService turns an approved bank-transfer withdrawal into an
// ISO 20022 credit transfer instruction for the settlement side. The
// ledger is already debited by the time an instruction is built.
type PayoutService struct{}

func NewPayoutService() *PayoutService {
	return &PayoutService{}
}

// IssueInstruction builds and forwards the payout document for an approved
// request.
func (ps *PayoutService) IssueInstruction(request *models.WithdrawalRequest) error {
	doc, err := ps.BuildCreditTransfer(request)
	if err != nil {
		return err
	}

	xmlData, err := ps.ConvertToXML(doc)
	if err != nil {
		return err
	}

	// TODO: deliver to the settlement queue once ops exposes one; until
	// then the instruction is emitted for manual processing.
	fmt.Printf("Payout instruction for request %d:\n%s\n", request.ID, xmlData)
	return nil
}

// BuildCreditTransfer creates a pacs.008 FIToFICustomerCreditTransfer for
// the request's payout destination.
func (ps *PayoutService) BuildCreditTransfer(request *models.WithdrawalRequest) (*pacs_v08.FIToFICustomerCreditTransferV08, error) {
	if request.Payout == nil {
		return nil, fmt.Errorf("request %d has no payout details", request.ID)
	}

	msgId := uuid.New().String()
	creDtTm := time.Now()
	settlementDate := time.Now()
	endToEnd := fmt.Sprintf("TAXMINT-WD-%d", request.ID)
	amount := float64(request.Amount) / 100 // kobo to naira

	doc := &pacs_v08.FIToFICustomerCreditTransferV08{
		GrpHdr: pacs_v08.GroupHeader93{
			MsgId:   common.Max35Text(msgId),
			CreDtTm: common.ISODateTime(creDtTm),
			NbOfTxs: "1",
			TtlIntrBkSttlmAmt: &pacs_v08.ActiveCurrencyAndAmount{
				Ccy:   common.ActiveCurrencyCode("NGN"),
				Value: amount,
			},
			IntrBkSttlmDt: (*common.ISODate)(&settlementDate),
			SttlmInf: pacs_v08.SettlementInstruction7{
				SttlmMtd: "CLRG", // Clearing
			},
		},
		CdtTrfTxInf: []pacs_v08.CreditTransferTransaction39{
			{
				PmtId: pacs_v08.PaymentIdentification7{
					InstrId:    &[]common.Max35Text{common.Max35Text(msgId)}[0],
					EndToEndId: common.Max35Text(endToEnd),
					TxId:       &[]common.Max35Text{common.Max35Text(endToEnd)}[0],
				},
				IntrBkSttlmAmt: pacs_v08.ActiveCurrencyAndAmount{
					Ccy:   common.ActiveCurrencyCode("NGN"),
					Value: amount,
				},
				IntrBkSttlmDt: (*common.ISODate)(&settlementDate),
				ChrgBr:        "SLEV",
				DbtrAgt: pacs_v08.BranchAndFinancialInstitutionIdentification6{
					FinInstnId: pacs_v08.FinancialInstitutionIdentification18{
						BICFI: &[]common.BICFIDec2014Identifier{common.BICFIDec2014Identifier("TAXMINT")}[0],
					},
				},
				Dbtr: pacs_v08.PartyIdentification135{
					Nm: &[]common.Max140Text{common.Max140Text("TaxMint Savings")}[0],
				},
				CdtrAgt: pacs_v08.BranchAndFinancialInstitutionIdentification6{
					FinInstnId: pacs_v08.FinancialInstitutionIdentification18{
						ClrSysMmbId: &pacs_v08.ClearingSystemMemberIdentification2{
							MmbId: common.Max35Text(request.Payout.BankCode),
						},
					},
				},
				Cdtr: pacs_v08.PartyIdentification135{
					Nm: &[]common.Max140Text{common.Max140Text(request.Payout.AccountName)}[0],
				},
				CdtrAcct: &pacs_v08.CashAccount38{
					Id: pacs_v08.AccountIdentification4Choice{
						Othr: pacs_v08.GenericAccountIdentification1{
							Id: common.Max34Text(request.Payout.AccountNumber),
						},
					},
				},
			},
		},
	}

	return doc, nil
}

// ConvertToXML converts an ISO 20022 document to an XML string
func (ps *PayoutService) ConvertToXML(doc interface{}) (string, error) {
	xmlData, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal XML: %w", err)
	}
	return xml.Header + string(xmlData), nil
}
