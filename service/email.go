package service

import (
	"context"
	"fmt"
	"html"
	"log/slog"

	"tripbudget/config"

	"gopkg.in/gomail.v2"
)

// MailSender 发送一封邮件，测试中可替换
type MailSender func(m *gomail.Message) error

// EmailService 邮件服务：给结算的收款方发送回执
type EmailService struct {
	cfg      *config.EmailConfig
	profiles ProfileResolver
	send     MailSender
	log      *slog.Logger
}

// NewEmailService 创建邮件服务
func NewEmailService(log *slog.Logger, cfg *config.EmailConfig, profiles ProfileResolver) *EmailService {
	s := &EmailService{cfg: cfg, profiles: profiles, log: log.With("service", "email")}
	s.send = s.dial
	return s
}

// WithSender 替换发送实现
func (s *EmailService) WithSender(send MailSender) *EmailService {
	s.send = send
	return s
}

// Publish 实现 Notifier，只处理 settlement 事件，其余事件忽略
func (s *EmailService) Publish(ctx context.Context, itineraryID uint, event string, payload any) error {
	if !s.cfg.Enabled || event != EventSettlement {
		return nil
	}
	ev, ok := payload.(SettlementEvent)
	if !ok {
		return fmt.Errorf("unexpected settlement payload %T", payload)
	}
	return s.SendSettlementReceipt(ctx, itineraryID, ev)
}

// SendSettlementReceipt 通知收款方已收到一笔结算
func (s *EmailService) SendSettlementReceipt(ctx context.Context, itineraryID uint, ev SettlementEvent) error {
	if !s.cfg.Enabled {
		return fmt.Errorf("邮件服务未启用，请配置 email.enabled=true")
	}

	profiles, err := s.profiles.Profiles(ctx, []uint{ev.From, ev.To})
	if err != nil {
		return fmt.Errorf("查询成员信息失败: %w", err)
	}
	payee, ok := profiles[ev.To]
	if !ok || payee.Email == "" {
		s.log.DebugContext(ctx, "payee has no email, receipt skipped", "member_id", ev.To)
		return nil
	}
	payer := profiles[ev.From]
	if payer.ID == 0 {
		payer.ID = ev.From
	}

	subject := "【旅行账本】结算回执"
	body := s.generateSettlementReceiptBody(itineraryID, payer.DisplayName(), payee.DisplayName(), ev)

	if err := s.sendEmail(payee.Email, subject, body); err != nil {
		return err
	}
	s.log.InfoContext(ctx, "settlement receipt sent",
		"itinerary_id", itineraryID,
		"expense_id", ev.ExpenseID,
		"to", payee.Email)
	return nil
}

// generateSettlementReceiptBody 生成结算回执内容
func (s *EmailService) generateSettlementReceiptBody(itineraryID uint, payerName, payeeName string, ev SettlementEvent) string {
	if payerName == "" {
		payerName = fmt.Sprintf("成员 #%d", ev.From)
	}
	return fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body { font-family: 'Microsoft YaHei', Arial, sans-serif; background: #f5f5f5; margin: 0; padding: 20px; }
        .container { max-width: 600px; margin: 0 auto; background: #fff; border-radius: 12px; overflow: hidden; box-shadow: 0 4px 20px rgba(0,0,0,0.1); }
        .header { background: linear-gradient(135deg, #10b981, #059669); color: white; padding: 30px; text-align: center; }
        .header h1 { margin: 0; font-size: 24px; }
        .content { padding: 40px 30px; }
        .content p { color: #333; line-height: 1.8; margin: 0 0 20px; }
        .amount-box { background: linear-gradient(135deg, #f0fdf4, #dcfce7); border: 2px dashed #10b981; border-radius: 12px; padding: 30px; text-align: center; margin: 30px 0; }
        .amount { font-size: 36px; font-weight: bold; color: #059669; font-family: 'Courier New', monospace; }
        .footer { background: #f8f9fa; padding: 20px 30px; text-align: center; color: #6c757d; font-size: 12px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>🧳 旅行账本</h1>
        </div>
        <div class="content">
            <p>尊敬的 <strong>%s</strong>，您好！</p>
            <p><strong>%s</strong> 在行程 #%d 中向您记录了一笔结算：</p>
            <div class="amount-box">
                <span class="amount">%s</span>
            </div>
            <p>账本编号：%s</p>
        </div>
        <div class="footer">
            <p>此邮件由系统自动发送，请勿回复</p>
        </div>
    </div>
</body>
</html>
`, html.EscapeString(payeeName), html.EscapeString(payerName), itineraryID, ev.Amount.StringFixed(2), ev.ExpenseID)
}

// sendEmail 组装并发送邮件
func (s *EmailService) sendEmail(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", m.FormatAddress(s.cfg.Username, s.cfg.From))
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	if err := s.send(m); err != nil {
		return fmt.Errorf("发送邮件失败: %w", err)
	}
	return nil
}

func (s *EmailService) dial(m *gomail.Message) error {
	d := gomail.NewDialer(s.cfg.Host, s.cfg.Port, s.cfg.Username, s.cfg.Password)
	return d.DialAndSend(m)
}
