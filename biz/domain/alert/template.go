package alert

import (
	"fmt"

	"github.com/nyaruka/phonenumbers"

	"github.com/Mar-cere/Anto-sub003/biz/domain/risk"
	"github.com/Mar-cere/Anto-sub003/biz/infrastructure/consts"
)

// hotlines 按联系人所在国家提示当地求助热线, 未知地区用默认文案
var hotlines = map[string]string{
	"ES": "024 (Línea de atención a la conducta suicida)",
	"MX": "800 911 2000 (Línea de la Vida)",
	"AR": "135 (Centro de Asistencia al Suicida)",
	"CO": "106",
	"CL": "*4141",
	"US": "988 (Suicide & Crisis Lifeline)",
}

// regionFromPhone 从手机号推断国家代码, 解析失败返回空
func regionFromPhone(phone string) string {
	if phone == "" {
		return ""
	}
	num, err := phonenumbers.Parse(phone, "")
	if err != nil {
		return ""
	}
	return phonenumbers.GetRegionCodeForNumber(num)
}

func hotlineFor(region string) string {
	if line, ok := hotlines[region]; ok {
		return line
	}
	return ""
}

func levelLabel(level risk.Level, lang string) string {
	if lang == consts.LangEn {
		return level.String()
	}
	switch level {
	case risk.High:
		return "ALTO"
	case risk.Medium:
		return "MEDIO"
	case risk.Warning:
		return "ADVERTENCIA"
	default:
		return "BAJO"
	}
}

// emailSubject 告警邮件主题
func emailSubject(level risk.Level, lang string, isTest bool) string {
	if isTest {
		if lang == consts.LangEn {
			return "[Anto] Test alert: emergency contact check"
		}
		return "[Anto] Alerta de prueba: verificación de contacto de emergencia"
	}
	if lang == consts.LangEn {
		return fmt.Sprintf("[Anto] %s risk alert for someone who trusts you", level.String())
	}
	return fmt.Sprintf("[Anto] Alerta de riesgo %s de alguien que confía en ti", levelLabel(level, lang))
}

// emailBody 告警邮件正文, 按联系人地区附上当地热线
func emailBody(contactName, relationship string, level risk.Level, lang, region, context string) string {
	hotline := hotlineFor(region)
	if lang == consts.LangEn {
		body := fmt.Sprintf(
			"<p>Hi %s,</p>"+
				"<p>You are listed as an emergency contact (%s) in Anto. "+
				"Our companion detected a <b>%s</b> risk state and we recommend reaching out as soon as possible.</p>"+
				"<p>Recent context: %s</p>",
			contactName, relationship, level.String(), context)
		if hotline != "" {
			body += fmt.Sprintf("<p>Local crisis line: <b>%s</b></p>", hotline)
		}
		return body + "<p>— Anto</p>"
	}
	body := fmt.Sprintf(
		"<p>Hola %s,</p>"+
			"<p>Figuras como contacto de emergencia (%s) en Anto. "+
			"Detectamos un estado de riesgo <b>%s</b> y te recomendamos comunicarte lo antes posible.</p>"+
			"<p>Contexto reciente: %s</p>",
		contactName, relationship, levelLabel(level, lang), context)
	if hotline != "" {
		body += fmt.Sprintf("<p>Línea de ayuda local: <b>%s</b></p>", hotline)
	}
	return body + "<p>— Anto</p>"
}

// messagingBody 短信文案, 保持简短
func messagingBody(contactName string, level risk.Level, lang string, isTest bool) string {
	if isTest {
		if lang == consts.LangEn {
			return fmt.Sprintf("Anto test: %s, you are set up as an emergency contact. No action needed.", contactName)
		}
		return fmt.Sprintf("Prueba de Anto: %s, estás configurado como contacto de emergencia. No se requiere acción.", contactName)
	}
	if lang == consts.LangEn {
		return fmt.Sprintf("Anto alert: %s, someone who trusts you may need support right now (risk %s). Please reach out.", contactName, level.String())
	}
	return fmt.Sprintf("Alerta de Anto: %s, alguien que confía en ti puede necesitar apoyo ahora (riesgo %s). Por favor comunícate.", contactName, levelLabel(level, lang))
}

// userPushContent 给用户本人的应用内通知
func userPushContent(level risk.Level, lang string) (title, body string) {
	if lang == consts.LangEn {
		switch level {
		case risk.Warning:
			return "We are here for you", "We noticed you might be having a rough moment. Want to talk about it?"
		default:
			return "You are not alone", "We reached out to your support network. Help is on the way."
		}
	}
	switch level {
	case risk.Warning:
		return "Estamos contigo", "Notamos que podrías estar pasando un mal momento. ¿Quieres hablar de ello?"
	default:
		return "No estás solo", "Avisamos a tu red de apoyo. La ayuda está en camino."
	}
}
